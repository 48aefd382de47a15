package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/choreclock/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

type CreateTaskParams struct {
	HouseholdID      int64
	Title            string
	Description      string
	AssignedTo       *int64
	AssignedBy       int64
	EstimatedMinutes *int
	Deadline         *time.Time
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assignedTo, estimated, actual, reviewedBy, templateID sql.NullInt64
	var deadline, completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &assignedTo, &t.AssignedBy,
		&t.Status, &estimated, &actual, &deadline, &completedAt, &reviewedBy,
		&templateID, &t.IsFromTemplate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AssignedTo = int64Ptr(assignedTo)
	t.EstimatedMinutes = intPtr(estimated)
	t.ActualMinutes = intPtr(actual)
	t.Deadline = timePtr(deadline)
	t.CompletedAt = timePtr(completedAt)
	t.ReviewedBy = int64Ptr(reviewedBy)
	t.TemplateID = int64Ptr(templateID)
	return &t, nil
}

const taskCols = `id, household_id, title, description, assigned_to, assigned_by, status, estimated_minutes, actual_minutes, deadline, completed_at, reviewed_by, template_id, is_from_template, created_at, updated_at`

func (s *TaskStore) Create(p CreateTaskParams) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, assigned_to, assigned_by, estimated_minutes, deadline)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.HouseholdID, p.Title, p.Description, nullInt64(p.AssignedTo), p.AssignedBy,
		nullInt(p.EstimatedMinutes), nullTime(p.Deadline),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// CreateFromTemplate copies an active template into a new task in one
// statement. It returns nil when the template does not exist or has been
// deactivated.
func (s *TaskStore) CreateFromTemplate(templateID int64, assignedTo *int64, deadline *time.Time) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, assigned_to, assigned_by, estimated_minutes, deadline, template_id, is_from_template)
		 SELECT household_id, title, description, ?, created_by, estimated_minutes, ?, id, 1
		 FROM task_templates WHERE id = ? AND is_active = 1`,
		nullInt64(assignedTo), nullTime(deadline), templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task from template: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByHousehold(householdID int64) ([]model.Task, error) {
	return s.list(`household_id = ?`, householdID)
}

func (s *TaskStore) ListByAssignee(userID int64) ([]model.Task, error) {
	return s.list(`assigned_to = ?`, userID)
}

func (s *TaskStore) list(where string, arg any) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE `+where+` ORDER BY created_at DESC, id DESC`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Transition sets the task's status to `to` only if it is currently `from`.
// Moving back to assigned clears the previous attempt's completion and review.
// It reports whether the row changed.
func (s *TaskStore) Transition(id int64, from, to model.TaskStatus, reviewerID *int64) (bool, error) {
	query := `UPDATE tasks SET status = ?, reviewed_by = COALESCE(?, reviewed_by), updated_at = ?
		 WHERE id = ? AND status = ?`
	args := []any{string(to), nullInt64(reviewerID), time.Now().UTC(), id, string(from)}
	if to == model.TaskAssigned {
		query = `UPDATE tasks SET status = ?, actual_minutes = NULL, completed_at = NULL, reviewed_by = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`
		args = []any{string(to), time.Now().UTC(), id, string(from)}
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("transition task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete marks the task completed with its actual minutes, conditional on
// the current status still being `from`.
func (s *TaskStore) Complete(id int64, from model.TaskStatus, actualMinutes int, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = ?, actual_minutes = ?, completed_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(model.TaskCompleted), actualMinutes, at.UTC(), at.UTC(), id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("complete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
