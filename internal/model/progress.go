package model

type DailyProgress struct {
	CompletedMinutes int `json:"completedMinutes"`
	TargetMinutes    int `json:"targetMinutes"`
	PendingMinutes   int `json:"pendingMinutes"`
}

type MemberProgress struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	IsGuest bool   `json:"is_guest"`
	DailyProgress
}
