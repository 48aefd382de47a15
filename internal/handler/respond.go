package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/validate"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status and a client-safe message. Unclassified
// errors are logged and reported as internal errors.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// decode reads a JSON body into v and validates it. An empty body is allowed
// when optional is set.
func decode(r *http.Request, v any, optional bool) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return apperr.Validation("invalid JSON")
		}
	}
	return validate.Struct(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// actor returns the authenticated caller. Routes are always behind
// RequireAuth, so a missing actor is a wiring bug.
func actor(r *http.Request) (auth.Actor, error) {
	a, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Actor{}, errors.New("no actor in request context")
	}
	return a, nil
}

// parseDate accepts YYYY-MM-DD, read as midnight in loc, or an RFC 3339
// timestamp.
func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, apperr.Validation("invalid date %q, want YYYY-MM-DD", s)
}

// dateQuery reads an optional date query parameter. A bare date used as the
// upper end of a range covers the whole day.
func dateQuery(r *http.Request, name string, loc *time.Location, endOfRange bool) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, dateOnly, err := parseDate(s, loc)
	if err != nil {
		return nil, apperr.Validation("invalid %s, want YYYY-MM-DD", name)
	}
	if dateOnly && endOfRange {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
