package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/choreclock/internal/database"
	"github.com/dukerupert/choreclock/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates an admin with a household and one member in it.
func seedHousehold(t *testing.T, db *sql.DB) (*model.Household, *model.User, *model.User) {
	t.Helper()
	us := NewUserStore(db)
	hs := NewHouseholdStore(db)

	admin, err := us.Create("admin@example.com", "Ada", "Admin")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	h, err := hs.Create("Home", admin.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	admin, err = us.GetByID(admin.ID)
	if err != nil {
		t.Fatalf("reload admin: %v", err)
	}

	member, err := us.Create("member@example.com", "Max", "Member")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	member, err = us.JoinHousehold(member.ID, h.ID, model.RoleMember)
	if err != nil {
		t.Fatalf("join household: %v", err)
	}
	return h, admin, member
}
