package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/choreclock/internal/model"
)

const inviteCodeAttempts = 5

var ErrInviteCodeExhausted = errors.New("could not generate a unique invite code")

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.InviteCode, &h.CreatedBy, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, invite_code, created_by, created_at`

// generateInviteCode returns 8 upper-case hex characters (4 random bytes).
func generateInviteCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create inserts a household with a fresh invite code and makes createdBy
// its admin, in a single transaction.
func (s *HouseholdStore) Create(name string, createdBy int64) (*model.Household, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	for attempt := 0; ; attempt++ {
		if attempt == inviteCodeAttempts {
			return nil, ErrInviteCodeExhausted
		}
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM households WHERE invite_code = ?`, code).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check invite code: %w", err)
		}
		if exists > 0 {
			continue
		}
		result, err := tx.Exec(
			`INSERT INTO households (name, invite_code, created_by) VALUES (?, ?, ?)`,
			name, code, createdBy,
		)
		if err != nil {
			return nil, fmt.Errorf("insert household: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		break
	}

	if _, err := tx.Exec(
		`UPDATE users SET household_id = ?, role = 'admin' WHERE id = ?`,
		id, createdBy,
	); err != nil {
		return nil, fmt.Errorf("promote creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByInviteCode(code string) (*model.Household, error) {
	row := s.db.QueryRow(
		`SELECT `+householdCols+` FROM households WHERE invite_code = ?`,
		strings.ToUpper(strings.TrimSpace(code)),
	)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by invite code: %w", err)
	}
	return h, nil
}
