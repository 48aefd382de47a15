package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/task"
)

type TaskHandler struct {
	svc    *task.Service
	loc    *time.Location
	logger *slog.Logger
}

func NewTaskHandler(svc *task.Service, loc *time.Location, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, loc: loc, logger: logger}
}

type taskRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description"`
	AssignedTo       *int64  `json:"assignedTo"`
	EstimatedMinutes *int    `json:"estimatedMinutes" validate:"omitnil,gte=0"`
	Deadline         *string `json:"deadline"`
}

type completeRequest struct {
	ActualMinutes *int `json:"actualMinutes" validate:"omitnil,gt=0"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=assigned completed pending_approval approved rejected"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req taskRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	in := task.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		AssignedTo:       req.AssignedTo,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if req.Deadline != nil && *req.Deadline != "" {
		d, _, err := parseDate(*req.Deadline, h.loc)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		in.Deadline = &d
	}

	t, err := h.svc.Create(a, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	tasks, err := h.svc.ListForHousehold(a)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeTasks(w, tasks)
}

func (h *TaskHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	tasks, err := h.svc.ListForUser(a.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeTasks(w, tasks)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
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
	var req completeRequest
	if err := decode(r, &req, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	t, err := h.svc.Complete(a, id, req.ActualMinutes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
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
	var req statusRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	t, err := h.svc.SetStatus(a, id, model.TaskStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func writeTasks(w http.ResponseWriter, tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
