package model

import "time"

type TimeLogStatus string

const (
	TimeLogPendingApproval TimeLogStatus = "pending_approval"
	TimeLogApproved        TimeLogStatus = "approved"
	TimeLogRejected        TimeLogStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s TimeLogStatus) Terminal() bool {
	return s == TimeLogApproved || s == TimeLogRejected
}

type TimeLog struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	HouseholdID int64         `json:"household_id"`
	TaskID      *int64        `json:"task_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Minutes     int           `json:"minutes"`
	Status      TimeLogStatus `json:"status"`
	LogDate     time.Time     `json:"log_date"`
	ReviewedBy  *int64        `json:"reviewed_by"`
	ReviewedAt  *time.Time    `json:"reviewed_at"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Submitter is the minimal identity shown next to a log in review queues.
type Submitter struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsGuest     bool   `json:"is_guest"`
}

type TimeLogWithSubmitter struct {
	TimeLog
	User Submitter `json:"user"`
}
