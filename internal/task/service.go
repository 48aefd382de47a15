// Package task runs the task lifecycle: creation by admins, completion by the
// assignee, and guarded admin review.
package task

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/metrics"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/recurrence"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/websocket"
)

type Store interface {
	Create(p store.CreateTaskParams) (*model.Task, error)
	CreateFromTemplate(templateID int64, assignedTo *int64, deadline *time.Time) (*model.Task, error)
	GetByID(id int64) (*model.Task, error)
	ListByHousehold(householdID int64) ([]model.Task, error)
	ListByAssignee(userID int64) ([]model.Task, error)
	Transition(id int64, from, to model.TaskStatus, reviewerID *int64) (bool, error)
	Complete(id int64, from model.TaskStatus, actualMinutes int, at time.Time) (bool, error)
}

type TemplateStore interface {
	Create(p store.CreateTemplateParams) (*model.TaskTemplate, error)
	GetByID(id int64) (*model.TaskTemplate, error)
	ListActive(householdID int64) ([]model.TaskTemplate, error)
	Deactivate(id int64) (*model.TaskTemplate, error)
}

type UserLookup interface {
	GetByID(id int64) (*model.User, error)
}

// Notifier delivers a notification to one user. Failures are logged by the
// caller and never undo the write that triggered them.
type Notifier interface {
	Notify(userID, householdID int64, title, message, notifType string, relatedID *int64) error
}

type Broadcaster interface {
	Broadcast(householdID int64, msg websocket.Message)
}

type Service struct {
	tasks     Store
	templates TemplateStore
	users     UserLookup
	notifier  Notifier
	events    Broadcaster
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the lifecycle. notifier and events may be nil.
func NewService(tasks Store, templates TemplateStore, users UserLookup, notifier Notifier, events Broadcaster, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		tasks:     tasks,
		templates: templates,
		users:     users,
		notifier:  notifier,
		events:    events,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateInput struct {
	Title            string
	Description      string
	AssignedTo       *int64
	EstimatedMinutes *int
	Deadline         *time.Time
}

// Create adds a task in the assigned state. Admin only.
func (s *Service) Create(actor auth.Actor, in CreateInput) (*model.Task, error) {
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
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes < 0 {
		return nil, apperr.Validation("estimatedMinutes cannot be negative")
	}
	if err := s.checkAssignee(householdID, in.AssignedTo); err != nil {
		return nil, err
	}

	t, err := s.tasks.Create(store.CreateTaskParams{
		HouseholdID:      householdID,
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		AssignedTo:       in.AssignedTo,
		AssignedBy:       actor.UserID,
		EstimatedMinutes: in.EstimatedMinutes,
		Deadline:         in.Deadline,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created", "id", t.ID, "household_id", householdID)
	s.publish(t, "created")
	return t, nil
}

// Complete marks an assigned task done. actualMinutes falls back to the
// estimate; one of them must be positive.
func (s *Service) Complete(actor auth.Actor, id int64, actualMinutes *int) (*model.Task, error) {
	t, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireMemberOf(t.HouseholdID); err != nil {
		return nil, err
	}
	if t.AssignedTo != nil && *t.AssignedTo != actor.UserID {
		return nil, apperr.Authorization("only the assignee can complete this task")
	}
	if t.Status != model.TaskAssigned {
		return nil, apperr.InvalidTransition("cannot complete a task that is %s", t.Status)
	}

	minutes := actualMinutes
	if minutes == nil {
		minutes = t.EstimatedMinutes
	}
	if minutes == nil || *minutes <= 0 {
		return nil, apperr.Validation("actualMinutes must be greater than zero")
	}

	ok, err := s.tasks.Complete(id, model.TaskAssigned, *minutes, s.now())
	if err != nil {
		return nil, err
	}
	updated, err := s.reread(id, ok)
	if err != nil {
		return nil, err
	}

	metrics.TaskTransitions.WithLabelValues(string(model.TaskAssigned), string(model.TaskCompleted)).Inc()
	s.logger.Info("task completed", "id", id, "user_id", actor.UserID, "actual_minutes", *minutes)
	s.publish(updated, "completed")
	return updated, nil
}

// SetStatus applies an admin review move from the transition table. The
// store only applies it if the task still has the status that was checked.
func (s *Service) SetStatus(actor auth.Actor, id int64, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	t, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireAdminOf(t.HouseholdID); err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, status) {
		return nil, apperr.InvalidTransition("cannot move task from %s to %s", t.Status, status)
	}

	ok, err := s.tasks.Transition(id, t.Status, status, &actor.UserID)
	if err != nil {
		return nil, err
	}
	updated, err := s.reread(id, ok)
	if err != nil {
		return nil, err
	}

	metrics.TaskTransitions.WithLabelValues(string(t.Status), string(status)).Inc()
	s.logger.Info("task status changed", "id", id, "from", t.Status, "to", status, "reviewer_id", actor.UserID)
	s.publish(updated, "updated")
	return updated, nil
}

// ListForHousehold returns the actor's household tasks, newest first.
func (s *Service) ListForHousehold(actor auth.Actor) ([]model.Task, error) {
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByHousehold(householdID)
}

// ListForUser returns tasks assigned to userID, newest first.
func (s *Service) ListForUser(userID int64) ([]model.Task, error) {
	return s.tasks.ListByAssignee(userID)
}

// CreateFromTemplate instantiates an active template, due at the end of the
// template's recurrence period. When the task has an assignee they get
// exactly one task_assigned notification.
func (s *Service) CreateFromTemplate(actor auth.Actor, templateID int64, assignedTo *int64) (*model.Task, error) {
	tmpl, err := s.templates.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil || !tmpl.IsActive {
		return nil, apperr.NotFound("template not found")
	}
	if err := actor.RequireAdminOf(tmpl.HouseholdID); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(tmpl.HouseholdID, assignedTo); err != nil {
		return nil, err
	}

	freq := recurrence.Freq(tmpl.Recurrence)
	t, err := s.tasks.CreateFromTemplate(templateID, assignedTo, freq.Due(s.now().In(s.loc)))
	if err != nil {
		return nil, err
	}
	if t == nil {
		// deactivated since the lookup above
		return nil, apperr.NotFound("template not found")
	}

	if assignedTo != nil && s.notifier != nil {
		msg := fmt.Sprintf("You have been assigned: %s (%s)", t.Title, freq.Describe())
		if err := s.notifier.Notify(*assignedTo, t.HouseholdID, "New task assigned", msg, model.NotifTypeTaskAssigned, &t.ID); err != nil {
			s.logger.Warn("notify assignee", "task_id", t.ID, "user_id", *assignedTo, "error", err)
		}
	}

	s.logger.Info("task created from template", "id", t.ID, "template_id", templateID)
	s.publish(t, "created")
	return t, nil
}

func (s *Service) checkAssignee(householdID int64, assignedTo *int64) error {
	if assignedTo == nil {
		return nil
	}
	u, err := s.users.GetByID(*assignedTo)
	if err != nil {
		return err
	}
	if u == nil || u.HouseholdID == nil || *u.HouseholdID != householdID {
		return apperr.Validation("assignee is not a member of this household")
	}
	return nil
}

func (s *Service) get(id int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("task not found")
	}
	return t, nil
}

// reread loads the task after a conditional write. A write that did not
// apply lost a race to another transition.
func (s *Service) reread(id int64, applied bool) (*model.Task, error) {
	t, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.InvalidTransition("task is now %s", t.Status)
	}
	return t, nil
}

func (s *Service) publish(t *model.Task, action string) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(t.HouseholdID, websocket.NewMessage("task", action, t.ID, map[string]any{"status": t.Status}))
	if t.AssignedTo != nil {
		s.events.Broadcast(t.HouseholdID, websocket.ProgressInvalidated(*t.AssignedTo, s.now().In(s.loc).Format("2006-01-02")))
	}
}
