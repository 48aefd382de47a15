package main

import (
	"bytes"
	"database/sql"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/choreclock/internal/database"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/store"
)

func setupCommandDB(t *testing.T) (*sql.DB, *model.User, *model.Household) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	admin, err := store.NewUserStore(db).Create("admin@example.com", "Ada", "Admin")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	h, err := store.NewHouseholdStore(db).Create("Home", admin.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return db, admin, h
}

func run(t *testing.T, db *sql.DB, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runCommand(db, time.Hour, &out, args)
	return strings.TrimSpace(out.String()), err
}

func TestIssueAndRevokeSession(t *testing.T) {
	db, admin, _ := setupCommandDB(t)
	sessions := store.NewSessionStore(db)

	token, err := run(t, db, "issue-session", strconv.FormatInt(admin.ID, 10))
	if err != nil {
		t.Fatalf("issue-session: %v", err)
	}
	sess, err := sessions.GetByToken(token)
	if err != nil || sess == nil {
		t.Fatalf("issued token not found: sess=%v err=%v", sess, err)
	}
	if sess.UserID != admin.ID {
		t.Errorf("user id = %d, want %d", sess.UserID, admin.ID)
	}

	if _, err := run(t, db, "revoke-session", token); err != nil {
		t.Fatalf("revoke-session: %v", err)
	}
	sess, err = sessions.GetByToken(token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess != nil {
		t.Error("revoked session should be gone")
	}
}

func TestJoinAndLeaveHousehold(t *testing.T) {
	db, _, h := setupCommandDB(t)
	users := store.NewUserStore(db)
	u, err := users.Create("max@example.com", "Max", "Member")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	id := strconv.FormatInt(u.ID, 10)

	if _, err := run(t, db, "join-household", id, strings.ToLower(h.InviteCode)); err != nil {
		t.Fatalf("join-household: %v", err)
	}
	got, err := users.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.HouseholdID == nil || *got.HouseholdID != h.ID || got.Role != model.RoleMember {
		t.Errorf("after join: household = %v role = %q", got.HouseholdID, got.Role)
	}

	if _, err := run(t, db, "leave-household", id); err != nil {
		t.Fatalf("leave-household: %v", err)
	}
	got, err = users.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil {
		t.Fatal("user must not be deleted when leaving a household")
	}
	if got.HouseholdID != nil {
		t.Errorf("household = %v, want nil", *got.HouseholdID)
	}
}

func TestCommandErrors(t *testing.T) {
	db, admin, _ := setupCommandDB(t)
	id := strconv.FormatInt(admin.ID, 10)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"missing argument", []string{"issue-session"}},
		{"bad user id", []string{"issue-session", "abc"}},
		{"missing user", []string{"leave-household", "9999"}},
		{"bad invite code", []string{"join-household", id, "not-a-code"}},
	}
	for _, tt := range tests {
		if _, err := run(t, db, tt.args...); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
