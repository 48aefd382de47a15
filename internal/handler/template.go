package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/task"
)

type TemplateHandler struct {
	svc    *task.Service
	logger *slog.Logger
}

func NewTemplateHandler(svc *task.Service, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{svc: svc, logger: logger}
}

type templateRequest struct {
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimatedMinutes" validate:"gt=0"`
	Priority         string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Recurrence       string `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
}

type createFromTemplateRequest struct {
	AssignedTo *int64 `json:"assignedTo"`
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req templateRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, h.logger, err)
		return
	}

	tmpl, err := h.svc.CreateTemplate(a, task.TemplateInput{
		Title:            req.Title,
		Description:      req.Description,
		EstimatedMinutes: req.EstimatedMinutes,
		Priority:         req.Priority,
		Recurrence:       req.Recurrence,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	a, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	templates, err := h.svc.ListTemplates(a)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.svc.DeactivateTemplate(a, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
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
	var req createFromTemplateRequest
	if err := decode(r, &req, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	t, err := h.svc.CreateFromTemplate(a, id, req.AssignedTo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
