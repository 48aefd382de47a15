package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreclock/internal/model"
)

type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

type CreateTemplateParams struct {
	HouseholdID      int64
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         string
	Recurrence       string
	CreatedBy        int64
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.TaskTemplate, error) {
	var t model.TaskTemplate
	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &t.EstimatedMinutes,
		&t.Priority, &t.Recurrence, &t.CreatedBy, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const templateCols = `id, household_id, title, description, estimated_minutes, priority, recurrence, created_by, is_active, created_at, updated_at`

func (s *TemplateStore) Create(p CreateTemplateParams) (*model.TaskTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_templates (household_id, title, description, estimated_minutes, priority, recurrence, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.HouseholdID, p.Title, p.Description, p.EstimatedMinutes, p.Priority, p.Recurrence, p.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) GetByID(id int64) (*model.TaskTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM task_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *TemplateStore) ListActive(householdID int64) ([]model.TaskTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM task_templates WHERE household_id = ? AND is_active = 1 ORDER BY created_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.TaskTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Deactivate hides a template from new use. Tasks already created from it
// keep their template_id.
func (s *TemplateStore) Deactivate(id int64) (*model.TaskTemplate, error) {
	_, err := s.db.Exec(
		`UPDATE task_templates SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("deactivate template: %w", err)
	}
	return s.GetByID(id)
}
