package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/timelog"
)

type TimeLogHandler struct {
	svc    *timelog.Service
	loc    *time.Location
	logger *slog.Logger
}

func NewTimeLogHandler(svc *timelog.Service, loc *time.Location, logger *slog.Logger) *TimeLogHandler {
	return &TimeLogHandler{svc: svc, loc: loc, logger: logger}
}

type timeLogRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes" validate:"gt=0"`
	LogDate     string `json:"logDate" validate:"required"`
	TaskID      *int64 `json:"taskId"`
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func (h *TimeLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req timeLogRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}
	logDate, _, err := parseDate(req.LogDate, h.loc)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	l, err := h.svc.Submit(a, timelog.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Minutes:     req.Minutes,
		LogDate:     logDate,
		TaskID:      req.TaskID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *TimeLogHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	start, err := dateQuery(r, "startDate", h.loc, false)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	end, err := dateQuery(r, "endDate", h.loc, true)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	logs, err := h.svc.ListForUser(a.UserID, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if logs == nil {
		logs = []model.TimeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *TimeLogHandler) ListHousehold(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	logs, err := h.svc.ListForHousehold(a)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if logs == nil {
		logs = []model.TimeLogWithSubmitter{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *TimeLogHandler) Review(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req reviewRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	l, err := h.svc.Review(a, id, model.TimeLogStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
