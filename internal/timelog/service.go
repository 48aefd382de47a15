// Package timelog runs the approval lifecycle of logged time:
// pending_approval moves once to approved or rejected and never leaves a
// terminal state.
package timelog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/metrics"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/websocket"
)

// Store is the slice of the persistence gateway the lifecycle needs.
type Store interface {
	Create(p store.CreateTimeLogParams) (*model.TimeLog, error)
	GetByID(id int64) (*model.TimeLog, error)
	ListByUser(userID int64, start, end *time.Time) ([]model.TimeLog, error)
	ListByHousehold(householdID int64) ([]model.TimeLogWithSubmitter, error)
	Review(id int64, status model.TimeLogStatus, reviewerID int64, at time.Time) (bool, error)
}

// TaskLookup resolves the optional task a log refers to.
type TaskLookup interface {
	GetByID(id int64) (*model.Task, error)
}

// Broadcaster pushes change events to a household's realtime clients.
type Broadcaster interface {
	Broadcast(householdID int64, msg websocket.Message)
}

type Service struct {
	logs   Store
	tasks  TaskLookup
	events Broadcaster
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the lifecycle. events may be nil. loc is the zone that
// calendar days are reckoned in.
func NewService(logs Store, tasks TaskLookup, events Broadcaster, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		logs:   logs,
		tasks:  tasks,
		events: events,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

type SubmitInput struct {
	Title       string
	Description string
	Minutes     int
	LogDate     time.Time
	TaskID      *int64
}

// Submit records time for the actor. Admin logs are approved on the spot with
// the admin as reviewer; everyone else starts in pending_approval.
func (s *Service) Submit(actor auth.Actor, in SubmitInput) (*model.TimeLog, error) {
	if in.Minutes <= 0 {
		return nil, apperr.Validation("minutes must be greater than zero")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.LogDate.IsZero() {
		return nil, apperr.Validation("logDate is required")
	}
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}

	if in.TaskID != nil {
		t, err := s.tasks.GetByID(*in.TaskID)
		if err != nil {
			return nil, err
		}
		if t == nil || t.HouseholdID != householdID {
			return nil, apperr.NotFound("task not found")
		}
	}

	p := store.CreateTimeLogParams{
		UserID:      actor.UserID,
		HouseholdID: householdID,
		TaskID:      in.TaskID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Minutes:     in.Minutes,
		Status:      model.TimeLogPendingApproval,
		LogDate:     in.LogDate,
	}
	if actor.IsAdmin() {
		now := s.now()
		p.Status = model.TimeLogApproved
		p.ReviewedBy = &actor.UserID
		p.ReviewedAt = &now
	}

	l, err := s.logs.Create(p)
	if err != nil {
		return nil, err
	}

	metrics.TimeLogsSubmitted.WithLabelValues(string(l.Status)).Inc()
	metrics.TimeLogMinutes.WithLabelValues(string(l.Status)).Add(float64(l.Minutes))
	s.logger.Info("time log submitted", "id", l.ID, "user_id", l.UserID, "minutes", l.Minutes, "status", l.Status)
	s.publish(l, "created")
	return l, nil
}

// Review moves a pending log to approved or rejected. The store applies the
// change only while the log is still pending, so of two concurrent reviews
// exactly one wins and the other gets an invalid transition.
func (s *Service) Review(actor auth.Actor, id int64, status model.TimeLogStatus) (*model.TimeLog, error) {
	if status != model.TimeLogApproved && status != model.TimeLogRejected {
		return nil, apperr.Validation("status must be approved or rejected")
	}

	l, err := s.logs.GetByID(id)
	if err != nil {
		return nil, err
	}
	// Logs of other households are reported as missing.
	if l == nil || actor.RequireMemberOf(l.HouseholdID) != nil {
		return nil, apperr.NotFound("time log not found")
	}
	if err := actor.RequireAdminOf(l.HouseholdID); err != nil {
		return nil, err
	}
	if l.Status.Terminal() {
		metrics.TimeLogReviews.WithLabelValues("conflict").Inc()
		return nil, apperr.InvalidTransition("time log is already %s", l.Status)
	}

	ok, err := s.logs.Review(id, status, actor.UserID, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.logs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("time log not found")
	}
	if !ok {
		metrics.TimeLogReviews.WithLabelValues("conflict").Inc()
		return nil, apperr.InvalidTransition("time log is already %s", updated.Status)
	}

	metrics.TimeLogReviews.WithLabelValues(string(status)).Inc()
	s.logger.Info("time log reviewed", "id", id, "status", status, "reviewer_id", actor.UserID)
	s.publish(updated, "reviewed")
	return updated, nil
}

// ListForUser returns userID's logs, newest logDate first, optionally limited
// to an inclusive [start, end] range.
func (s *Service) ListForUser(userID int64, start, end *time.Time) ([]model.TimeLog, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperr.Validation("endDate is before startDate")
	}
	return s.logs.ListByUser(userID, start, end)
}

// ListForHousehold is the admin review queue: every log in the actor's
// household with its submitter, newest first.
func (s *Service) ListForHousehold(actor auth.Actor) ([]model.TimeLogWithSubmitter, error) {
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}
	if err := actor.RequireAdminOf(householdID); err != nil {
		return nil, err
	}
	return s.logs.ListByHousehold(householdID)
}

func (s *Service) publish(l *model.TimeLog, action string) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(l.HouseholdID, websocket.NewMessage("time_log", action, l.ID, map[string]any{"status": l.Status}))
	s.events.Broadcast(l.HouseholdID, websocket.ProgressInvalidated(l.UserID, l.LogDate.In(s.loc).Format("2006-01-02")))
}
