package main

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/store"
)

const usage = `usage:
  choreclock                                     run the server
  choreclock issue-session <user-id>             print a new session token
  choreclock revoke-session <token>              delete a session
  choreclock join-household <user-id> <invite>   add a user to a household as a member
  choreclock leave-household <user-id>           make a user unaffiliated`

// runCommand executes one operator subcommand against db.
func runCommand(db *sql.DB, sessionTTL time.Duration, out io.Writer, args []string) error {
	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)

	switch {
	case args[0] == "issue-session" && len(args) == 2:
		u, err := lookupUser(users, args[1])
		if err != nil {
			return err
		}
		sess, err := sessions.Create(u.ID, sessionTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, sess.Token)
		return nil

	case args[0] == "revoke-session" && len(args) == 2:
		if err := sessions.Delete(args[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, "session revoked")
		return nil

	case args[0] == "join-household" && len(args) == 3:
		u, err := lookupUser(users, args[1])
		if err != nil {
			return err
		}
		h, err := store.NewHouseholdStore(db).GetByInviteCode(args[2])
		if err != nil {
			return err
		}
		if h == nil {
			return fmt.Errorf("no household with invite code %q", args[2])
		}
		if _, err := users.JoinHousehold(u.ID, h.ID, model.RoleMember); err != nil {
			return err
		}
		fmt.Fprintf(out, "user %d joined %s\n", u.ID, h.Name)
		return nil

	case args[0] == "leave-household" && len(args) == 2:
		u, err := lookupUser(users, args[1])
		if err != nil {
			return err
		}
		if err := users.RemoveFromHousehold(u.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "user %d left their household\n", u.ID)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func lookupUser(users *store.UserStore, arg string) (*model.User, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", arg, err)
	}
	u, err := users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}
