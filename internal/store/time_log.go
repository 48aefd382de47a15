package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/choreclock/internal/model"
)

type TimeLogStore struct {
	db *sql.DB
}

func NewTimeLogStore(db *sql.DB) *TimeLogStore {
	return &TimeLogStore{db: db}
}

// CreateTimeLogParams carries a fully decided time log row. The lifecycle
// layer chooses Status and the reviewer fields; the store only persists them.
type CreateTimeLogParams struct {
	UserID      int64
	HouseholdID int64
	TaskID      *int64
	Title       string
	Description string
	Minutes     int
	Status      model.TimeLogStatus
	LogDate     time.Time
	ReviewedBy  *int64
	ReviewedAt  *time.Time
}

func scanTimeLog(scanner interface{ Scan(...any) error }) (*model.TimeLog, error) {
	var l model.TimeLog
	var taskID, reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime

	err := scanner.Scan(
		&l.ID, &l.UserID, &l.HouseholdID, &taskID, &l.Title, &l.Description,
		&l.Minutes, &l.Status, &l.LogDate, &reviewedBy, &reviewedAt, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.TaskID = int64Ptr(taskID)
	l.ReviewedBy = int64Ptr(reviewedBy)
	l.ReviewedAt = timePtr(reviewedAt)
	return &l, nil
}

const timeLogCols = `id, user_id, household_id, task_id, title, description, minutes, status, log_date, reviewed_by, reviewed_at, created_at`

func (s *TimeLogStore) Create(p CreateTimeLogParams) (*model.TimeLog, error) {
	result, err := s.db.Exec(
		`INSERT INTO time_logs (user_id, household_id, task_id, title, description, minutes, status, log_date, reviewed_by, reviewed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.HouseholdID, nullInt64(p.TaskID), p.Title, p.Description, p.Minutes,
		string(p.Status), p.LogDate.UTC(), nullInt64(p.ReviewedBy), nullTime(p.ReviewedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert time log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TimeLogStore) GetByID(id int64) (*model.TimeLog, error) {
	row := s.db.QueryRow(`SELECT `+timeLogCols+` FROM time_logs WHERE id = ?`, id)
	l, err := scanTimeLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get time log: %w", err)
	}
	return l, nil
}

// ListByUser returns the user's logs, newest log date first. start and end
// are optional and inclusive.
func (s *TimeLogStore) ListByUser(userID int64, start, end *time.Time) ([]model.TimeLog, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if start != nil {
		where = append(where, "log_date >= ?")
		args = append(args, start.UTC())
	}
	if end != nil {
		where = append(where, "log_date <= ?")
		args = append(args, end.UTC())
	}

	rows, err := s.db.Query(
		`SELECT `+timeLogCols+` FROM time_logs WHERE `+strings.Join(where, " AND ")+` ORDER BY log_date DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list time logs by user: %w", err)
	}
	defer rows.Close()

	var logs []model.TimeLog
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// ListByHousehold returns every log in the household joined with who
// submitted it, newest submission first.
func (s *TimeLogStore) ListByHousehold(householdID int64) ([]model.TimeLogWithSubmitter, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.user_id, t.household_id, t.task_id, t.title, t.description, t.minutes, t.status,
		        t.log_date, t.reviewed_by, t.reviewed_at, t.created_at,
		        u.display_name, u.first_name, u.last_name, u.is_guest
		 FROM time_logs t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.household_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list time logs by household: %w", err)
	}
	defer rows.Close()

	var logs []model.TimeLogWithSubmitter
	for rows.Next() {
		var l model.TimeLogWithSubmitter
		var taskID, reviewedBy sql.NullInt64
		var reviewedAt sql.NullTime
		err := rows.Scan(
			&l.ID, &l.UserID, &l.HouseholdID, &taskID, &l.Title, &l.Description,
			&l.Minutes, &l.Status, &l.LogDate, &reviewedBy, &reviewedAt, &l.CreatedAt,
			&l.User.DisplayName, &l.User.FirstName, &l.User.LastName, &l.User.IsGuest,
		)
		if err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		l.TaskID = int64Ptr(taskID)
		l.ReviewedBy = int64Ptr(reviewedBy)
		l.ReviewedAt = timePtr(reviewedAt)
		l.User.ID = l.UserID
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Review moves a pending log to status. The update only applies while the
// row is still pending, so concurrent reviews cannot overwrite each other;
// the returned bool reports whether this call won.
func (s *TimeLogStore) Review(id int64, status model.TimeLogStatus, reviewerID int64, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE time_logs SET status = ?, reviewed_by = ?, reviewed_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), reviewerID, at.UTC(), id, string(model.TimeLogPendingApproval),
	)
	if err != nil {
		return false, fmt.Errorf("review time log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
