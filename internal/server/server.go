package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/choreclock/internal/handler"
	"github.com/dukerupert/choreclock/internal/middleware"
	"github.com/dukerupert/choreclock/internal/notify"
	"github.com/dukerupert/choreclock/internal/progress"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/task"
	"github.com/dukerupert/choreclock/internal/timelog"
	ws "github.com/dukerupert/choreclock/internal/websocket"
)

// Time log submissions allowed per user per minute.
const submitRateLimit = 30

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	timeLogH      *handler.TimeLogHandler
	taskH         *handler.TaskHandler
	templateH     *handler.TemplateHandler
	progressH     *handler.ProgressHandler
	userH         *handler.UserHandler
	notificationH *handler.NotificationHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

// New wires stores, lifecycle services and handlers. loc is the zone that
// calendar days are reckoned in.
func New(db *sql.DB, loc *time.Location, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	timeLogStore := store.NewTimeLogStore(db)
	taskStore := store.NewTaskStore(db)
	templateStore := store.NewTemplateStore(db)
	notificationStore := store.NewNotificationStore(db)

	notifier := notify.NewService(notificationStore, hub, logger.With("component", "notify"))
	timeLogs := timelog.NewService(timeLogStore, taskStore, hub, loc, logger.With("component", "timelog"))
	tasks := task.NewService(taskStore, templateStore, userStore, notifier, hub, loc, logger.With("component", "task"))
	agg := progress.NewAggregator(timeLogStore, userStore, loc)

	return &Server{
		db:            db,
		hub:           hub,
		timeLogH:      handler.NewTimeLogHandler(timeLogs, loc, logger.With("component", "time_log")),
		taskH:         handler.NewTaskHandler(tasks, loc, logger.With("component", "task_handler")),
		templateH:     handler.NewTemplateHandler(tasks, logger.With("component", "template")),
		progressH:     handler.NewProgressHandler(agg, logger.With("component", "progress")),
		userH:         handler.NewUserHandler(userStore, hub, loc, logger.With("component", "user")),
		notificationH: handler.NewNotificationHandler(notifier, logger.With("component", "notification")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.registerProtectedRoutes(mux)

	var h http.Handler = mux
	h = middleware.Metrics(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return h
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	requireAuth := middleware.RequireAuth(s.sessionStore, s.userStore, s.logger.With("component", "auth"))
	protect := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireAdmin(h))
	}
	submitLimit := middleware.RateLimit(s.rateLimiter, middleware.UserKey, submitRateLimit, time.Minute)

	// Time logs
	mux.Handle("POST /api/time-logs", requireAuth(submitLimit(http.HandlerFunc(s.timeLogH.Create))))
	mux.Handle("GET /api/time-logs/my", protect(s.timeLogH.ListMine))
	mux.Handle("GET /api/time-logs", admin(s.timeLogH.ListHousehold))
	mux.Handle("PUT /api/time-logs/{id}/review", admin(s.timeLogH.Review))

	// Progress
	mux.Handle("GET /api/progress/daily", protect(s.progressH.Daily))
	mux.Handle("GET /api/progress/household", admin(s.progressH.Household))

	// Tasks
	mux.Handle("POST /api/tasks", admin(s.taskH.Create))
	mux.Handle("GET /api/tasks", protect(s.taskH.List))
	mux.Handle("GET /api/tasks/assigned", protect(s.taskH.ListAssigned))
	mux.Handle("PUT /api/tasks/{id}/complete", protect(s.taskH.Complete))
	mux.Handle("PUT /api/tasks/{id}/status", admin(s.taskH.SetStatus))

	// Task templates
	mux.Handle("POST /api/task-templates", admin(s.templateH.Create))
	mux.Handle("GET /api/task-templates", protect(s.templateH.List))
	mux.Handle("DELETE /api/task-templates/{id}", admin(s.templateH.Delete))
	mux.Handle("POST /api/task-templates/{id}/create-task", admin(s.templateH.CreateTask))

	// Users
	mux.Handle("PUT /api/users/daily-target", admin(s.userH.UpdateDailyTarget))

	// Notifications
	mux.Handle("GET /api/notifications", protect(s.notificationH.List))
	mux.Handle("PATCH /api/notifications/read-all", protect(s.notificationH.MarkAllRead))
	mux.Handle("PATCH /api/notifications/{id}/read", protect(s.notificationH.MarkRead))

	// Realtime
	mux.Handle("GET /ws", requireAuth(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"))))
}
