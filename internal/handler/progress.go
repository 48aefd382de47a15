package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreclock/internal/progress"
)

type ProgressHandler struct {
	agg    *progress.Aggregator
	logger *slog.Logger
	now    func() time.Time
}

func NewProgressHandler(agg *progress.Aggregator, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{agg: agg, logger: logger, now: time.Now}
}

// date reads ?date=, defaulting to today.
func (h *ProgressHandler) date(r *http.Request) (time.Time, error) {
	d, err := dateQuery(r, "date", h.agg.Location(), false)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return h.now(), nil
	}
	return *d, nil
}

func (h *ProgressHandler) Daily(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := h.date(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	p, err := h.agg.GetDailyProgress(a.UserID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProgressHandler) Household(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	date, err := h.date(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	rows, err := h.agg.HouseholdProgress(a, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
