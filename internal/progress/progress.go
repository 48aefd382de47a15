// Package progress derives a user's daily minutes from the stored time logs.
// Nothing is cached: every call re-reads and re-sums the day's logs.
package progress

import (
	"time"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/model"
)

type LogSource interface {
	ListByUser(userID int64, start, end *time.Time) ([]model.TimeLog, error)
}

type UserSource interface {
	GetByID(id int64) (*model.User, error)
	ListByHousehold(householdID int64) ([]model.User, error)
}

// DayBounds returns the half-open interval [start, end) covering the
// calendar day of date in loc.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Summarize totals approved and pending minutes over logs whose logDate
// falls in [start, end). Rejected logs never count.
func Summarize(logs []model.TimeLog, start, end time.Time, target int) model.DailyProgress {
	p := model.DailyProgress{TargetMinutes: target}
	for _, l := range logs {
		if l.LogDate.Before(start) || !l.LogDate.Before(end) {
			continue
		}
		switch l.Status {
		case model.TimeLogApproved:
			p.CompletedMinutes += l.Minutes
		case model.TimeLogPendingApproval:
			p.PendingMinutes += l.Minutes
		}
	}
	return p
}

type Aggregator struct {
	logs  LogSource
	users UserSource
	loc   *time.Location
}

func NewAggregator(logs LogSource, users UserSource, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{logs: logs, users: users, loc: loc}
}

// Location is the zone calendar days are computed in.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// GetDailyProgress computes userID's totals for the calendar day of date.
func (a *Aggregator) GetDailyProgress(userID int64, date time.Time) (model.DailyProgress, error) {
	u, err := a.users.GetByID(userID)
	if err != nil {
		return model.DailyProgress{}, err
	}
	if u == nil {
		return model.DailyProgress{}, apperr.NotFound("user not found")
	}
	return a.forUser(u, date)
}

// HouseholdProgress returns the day's totals for every member of the actor's
// household. Admin only.
func (a *Aggregator) HouseholdProgress(actor auth.Actor, date time.Time) ([]model.MemberProgress, error) {
	householdID, err := actor.RequireHousehold()
	if err != nil {
		return nil, err
	}
	if err := actor.RequireAdminOf(householdID); err != nil {
		return nil, err
	}

	members, err := a.users.ListByHousehold(householdID)
	if err != nil {
		return nil, err
	}

	out := make([]model.MemberProgress, 0, len(members))
	for i := range members {
		u := &members[i]
		p, err := a.forUser(u, date)
		if err != nil {
			return nil, err
		}
		out = append(out, model.MemberProgress{
			UserID:        u.ID,
			Name:          u.Name(),
			IsGuest:       u.IsGuest,
			DailyProgress: p,
		})
	}
	return out, nil
}

func (a *Aggregator) forUser(u *model.User, date time.Time) (model.DailyProgress, error) {
	start, end := DayBounds(date, a.loc)
	last := end.Add(-time.Nanosecond)
	logs, err := a.logs.ListByUser(u.ID, &start, &last)
	if err != nil {
		return model.DailyProgress{}, err
	}
	return Summarize(logs, start, end, u.TargetMinutes()), nil
}
