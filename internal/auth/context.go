package auth

import (
	"context"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/model"
)

type contextKey struct{}

// Actor is the authenticated caller. It is resolved once per request and
// handed to every lifecycle operation, which asks it for the permission it
// needs instead of re-deriving role checks.
type Actor struct {
	UserID      int64
	HouseholdID *int64
	Role        string
	IsGuest     bool
	SessionID   int64
}

// ActorFromUser builds an Actor from a stored user row.
func ActorFromUser(u *model.User, sessionID int64) Actor {
	return Actor{
		UserID:      u.ID,
		HouseholdID: u.HouseholdID,
		Role:        u.Role,
		IsGuest:     u.IsGuest,
		SessionID:   sessionID,
	}
}

func (a Actor) IsAdmin() bool {
	return a.HouseholdID != nil && a.Role == model.RoleAdmin
}

// RequireHousehold returns the actor's household or a validation error when
// the actor is unaffiliated.
func (a Actor) RequireHousehold() (int64, error) {
	if a.HouseholdID == nil {
		return 0, apperr.Validation("you must join a household first")
	}
	return *a.HouseholdID, nil
}

// RequireMemberOf fails unless the actor belongs to householdID.
func (a Actor) RequireMemberOf(householdID int64) error {
	if a.HouseholdID == nil || *a.HouseholdID != householdID {
		return apperr.Authorization("not a member of this household")
	}
	return nil
}

// RequireAdminOf fails unless the actor is an admin of householdID.
func (a Actor) RequireAdminOf(householdID int64) error {
	if err := a.RequireMemberOf(householdID); err != nil {
		return err
	}
	if a.Role != model.RoleAdmin {
		return apperr.Authorization("only admins can do this")
	}
	return nil
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

func UserID(ctx context.Context) int64 {
	a, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return a.UserID
}

func IsAdmin(ctx context.Context) bool {
	a, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return a.IsAdmin()
}
