package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/websocket"
)

type UserHandler struct {
	users  *store.UserStore
	hub    *websocket.Hub
	loc    *time.Location
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, hub: hub, loc: loc, logger: logger}
}

type dailyTargetRequest struct {
	UserID             int64 `json:"userId" validate:"required"`
	DailyTargetMinutes int   `json:"dailyTargetMinutes" validate:"gte=1"`
}

// UpdateDailyTarget lets an admin set a household member's daily minutes.
func (h *UserHandler) UpdateDailyTarget(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req dailyTargetRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	householdID, err := a.RequireHousehold()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := a.RequireAdminOf(householdID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	target, err := h.users.GetByID(req.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if target == nil || target.HouseholdID == nil || *target.HouseholdID != householdID {
		writeError(w, h.logger, apperr.NotFound("user not found"))
		return
	}

	u, err := h.users.UpdateDailyTarget(req.UserID, req.DailyTargetMinutes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(householdID, websocket.NewMessage("user", "updated", u.ID, nil))
		h.hub.Broadcast(householdID, websocket.ProgressInvalidated(u.ID, time.Now().In(h.loc).Format(dateLayout)))
	}
	writeJSON(w, http.StatusOK, u)
}
