package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// DefaultDailyTargetMinutes applies when a user has no target of their own.
const DefaultDailyTargetMinutes = 60

type User struct {
	ID                 int64     `json:"id"`
	Email              *string   `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	DisplayName        string    `json:"display_name"`
	HouseholdID        *int64    `json:"household_id"`
	Role               string    `json:"role"`
	DailyTargetMinutes *int      `json:"daily_target_minutes"`
	IsGuest            bool      `json:"is_guest"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TargetMinutes returns the user's daily target, falling back to the default.
func (u *User) TargetMinutes() int {
	if u.DailyTargetMinutes == nil || *u.DailyTargetMinutes <= 0 {
		return DefaultDailyTargetMinutes
	}
	return *u.DailyTargetMinutes
}

// Name picks the best human-readable label for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Email != nil:
		return *u.Email
	}
	return "Unknown"
}
