package task

import (
	"strings"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/recurrence"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/websocket"
)

const (
	defaultPriority   = "medium"
	defaultRecurrence = recurrence.Daily
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true}

type TemplateInput struct {
	Title            string
	Description      string
	EstimatedMinutes int
	Priority         string
	Recurrence       string
}

// CreateTemplate stores a reusable task definition. Admin only.
func (s *Service) CreateTemplate(actor auth.Actor, in TemplateInput) (*model.TaskTemplate, error) {
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}
	if err := actor.RequireAdminOf(householdID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.EstimatedMinutes <= 0 {
		return nil, apperr.Validation("estimatedMinutes must be greater than zero")
	}
	priority := in.Priority
	if priority == "" {
		priority = defaultPriority
	}
	if !priorities[priority] {
		return nil, apperr.Validation("unknown priority %q", priority)
	}
	if in.Recurrence == "" {
		in.Recurrence = string(defaultRecurrence)
	}
	freq, err := recurrence.Parse(in.Recurrence)
	if err != nil {
		return nil, apperr.Validation("unknown recurrence %q", in.Recurrence)
	}

	tmpl, err := s.templates.Create(store.CreateTemplateParams{
		HouseholdID:      householdID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		EstimatedMinutes: in.EstimatedMinutes,
		Priority:         priority,
		Recurrence:       string(freq),
		CreatedBy:        actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.broadcastTemplate(tmpl, "created")
	return tmpl, nil
}

// ListTemplates returns the active templates of the actor's household.
func (s *Service) ListTemplates(actor auth.Actor) ([]model.TaskTemplate, error) {
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}
	return s.templates.ListActive(householdID)
}

// DeactivateTemplate hides a template from listing and instantiation. Rows
// are kept so tasks can still point at them.
func (s *Service) DeactivateTemplate(actor auth.Actor, id int64) (*model.TaskTemplate, error) {
	tmpl, err := s.templates.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil || !tmpl.IsActive {
		return nil, apperr.NotFound("template not found")
	}
	if err := actor.RequireAdminOf(tmpl.HouseholdID); err != nil {
		return nil, err
	}
	tmpl, err = s.templates.Deactivate(id)
	if err != nil {
		return nil, err
	}
	s.broadcastTemplate(tmpl, "deleted")
	return tmpl, nil
}

func (s *Service) broadcastTemplate(tmpl *model.TaskTemplate, action string) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(tmpl.HouseholdID, websocket.NewMessage("task_template", action, tmpl.ID, nil))
}
