package store

import (
	"regexp"
	"testing"

	"github.com/dukerupert/choreclock/internal/model"
)

var inviteCodePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestHouseholdCreatePromotesCreator(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	hs := NewHouseholdStore(db)

	u, err := us.Create("alice@example.com", "Alice", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	h, err := hs.Create("Test Household", u.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Test Household" {
		t.Errorf("name = %q, want %q", h.Name, "Test Household")
	}
	if !inviteCodePattern.MatchString(h.InviteCode) {
		t.Errorf("invite code = %q, want 8 hex chars", h.InviteCode)
	}
	if h.CreatedBy != u.ID {
		t.Errorf("created_by = %d, want %d", h.CreatedBy, u.ID)
	}

	got, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.HouseholdID == nil || *got.HouseholdID != h.ID {
		t.Errorf("household_id = %v, want %d", got.HouseholdID, h.ID)
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", got.Role, model.RoleAdmin)
	}
}

func TestHouseholdInviteCodesUnique(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	hs := NewHouseholdStore(db)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		u, err := us.Create("", "User", "")
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		h, err := hs.Create("House", u.ID)
		if err != nil {
			t.Fatalf("create household: %v", err)
		}
		if seen[h.InviteCode] {
			t.Fatalf("duplicate invite code %q", h.InviteCode)
		}
		seen[h.InviteCode] = true
	}
}

func TestHouseholdGetByInviteCode(t *testing.T) {
	db := setupTestDB(t)
	h, _, _ := seedHousehold(t, db)
	hs := NewHouseholdStore(db)

	got, err := hs.GetByInviteCode(" " + h.InviteCode + " ")
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if got == nil || got.ID != h.ID {
		t.Fatalf("got %v, want household %d", got, h.ID)
	}

	missing, err := hs.GetByInviteCode("00000000")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown invite code")
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	h, err := hs.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}
