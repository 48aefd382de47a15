package model

import "time"

type TaskStatus string

const (
	TaskAssigned        TaskStatus = "assigned"
	TaskCompleted       TaskStatus = "completed"
	TaskPendingApproval TaskStatus = "pending_approval"
	TaskApproved        TaskStatus = "approved"
	TaskRejected        TaskStatus = "rejected"
)

// Valid reports whether s is one of the five known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskAssigned, TaskCompleted, TaskPendingApproval, TaskApproved, TaskRejected:
		return true
	}
	return false
}

type Task struct {
	ID               int64      `json:"id"`
	HouseholdID      int64      `json:"household_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	AssignedTo       *int64     `json:"assigned_to"`
	AssignedBy       int64      `json:"assigned_by"`
	Status           TaskStatus `json:"status"`
	EstimatedMinutes *int       `json:"estimated_minutes"`
	ActualMinutes    *int       `json:"actual_minutes"`
	Deadline         *time.Time `json:"deadline"`
	CompletedAt      *time.Time `json:"completed_at"`
	ReviewedBy       *int64     `json:"reviewed_by"`
	TemplateID       *int64     `json:"template_id"`
	IsFromTemplate   bool       `json:"is_from_template"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type TaskTemplate struct {
	ID               int64     `json:"id"`
	HouseholdID      int64     `json:"household_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	Priority         string    `json:"priority"`
	Recurrence       string    `json:"recurrence"`
	CreatedBy        int64     `json:"created_by"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
