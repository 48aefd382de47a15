// Package notify stores in-app notifications and pings the household's
// realtime clients so the recipient's badge refreshes.
package notify

import (
	"log/slog"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/metrics"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/websocket"
)

type Store interface {
	Create(userID, householdID int64, title, message, notifType string, relatedID *int64) (*model.Notification, error)
	ListByUser(userID int64, unreadOnly bool) ([]model.Notification, error)
	MarkRead(id, userID int64) (bool, error)
	MarkAllRead(userID int64) (int64, error)
}

type Broadcaster interface {
	Broadcast(householdID int64, msg websocket.Message)
}

type Service struct {
	store  Store
	events Broadcaster
	logger *slog.Logger
}

// NewService creates the notification service. events may be nil.
func NewService(store Store, events Broadcaster, logger *slog.Logger) *Service {
	return &Service{store: store, events: events, logger: logger}
}

// Notify persists a notification for userID.
func (s *Service) Notify(userID, householdID int64, title, message, notifType string, relatedID *int64) error {
	n, err := s.store.Create(userID, householdID, title, message, notifType, relatedID)
	if err != nil {
		metrics.NotificationFailures.Inc()
		return err
	}
	s.logger.Debug("notification stored", "id", n.ID, "user_id", userID, "type", notifType)
	if s.events != nil {
		s.events.Broadcast(householdID, websocket.NewMessage("notification", "created", n.ID, map[string]any{"user_id": userID}))
	}
	return nil
}

// List returns the actor's recent notifications.
func (s *Service) List(actor auth.Actor, unreadOnly bool) ([]model.Notification, error) {
	return s.store.ListByUser(actor.UserID, unreadOnly)
}

// MarkRead marks one of the actor's notifications read.
func (s *Service) MarkRead(actor auth.Actor, id int64) error {
	ok, err := s.store.MarkRead(id, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("notification not found")
	}
	return nil
}

// MarkAllRead clears the actor's unread notifications and reports how many
// changed.
func (s *Service) MarkAllRead(actor auth.Actor) (int64, error) {
	n, err := s.store.MarkAllRead(actor.UserID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("notifications marked read", "user_id", actor.UserID, "count", n)
	return n, nil
}
