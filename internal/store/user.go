package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreclock/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var email sql.NullString
	var householdID, target sql.NullInt64
	err := scanner.Scan(
		&u.ID, &email, &u.FirstName, &u.LastName, &u.DisplayName,
		&householdID, &u.Role, &target, &u.IsGuest,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.HouseholdID = int64Ptr(householdID)
	u.DailyTargetMinutes = intPtr(target)
	return &u, nil
}

const userCols = `id, email, first_name, last_name, display_name, household_id, role, daily_target_minutes, is_guest, created_at, updated_at`

// Create registers an unaffiliated member.
func (s *UserStore) Create(email, firstName, lastName string) (*model.User, error) {
	var e sql.NullString
	if email != "" {
		e = sql.NullString{String: email, Valid: true}
	}
	result, err := s.db.Exec(
		`INSERT INTO users (email, first_name, last_name) VALUES (?, ?, ?)`,
		e, firstName, lastName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// CreateGuest adds a credential-less member directly to a household.
func (s *UserStore) CreateGuest(householdID int64, displayName string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (display_name, household_id, role, is_guest) VALUES (?, ?, 'member', 1)`,
		displayName, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert guest: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByHousehold(householdID int64) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE household_id = ? ORDER BY created_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users by household: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// JoinHousehold moves the user into householdID with the given role. A user
// belongs to at most one household, so any previous membership is replaced.
func (s *UserStore) JoinHousehold(userID, householdID int64, role string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET household_id = ?, role = ? WHERE id = ?`,
		householdID, role, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("join household: %w", err)
	}
	return s.GetByID(userID)
}

// RemoveFromHousehold demotes the user to an unaffiliated member. Users are
// never deleted here; their time logs stay with the household.
func (s *UserStore) RemoveFromHousehold(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET household_id = NULL, role = 'member' WHERE id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("remove from household: %w", err)
	}
	return nil
}

func (s *UserStore) UpdateDailyTarget(userID int64, minutes int) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET daily_target_minutes = ? WHERE id = ?`,
		minutes, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update daily target: %w", err)
	}
	return s.GetByID(userID)
}
