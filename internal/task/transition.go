package task

import "github.com/dukerupert/choreclock/internal/model"

// reviewTransitions lists the moves an admin may make with SetStatus.
// assigned -> completed is only reachable through Complete, and approved is
// terminal.
var reviewTransitions = map[model.TaskStatus][]model.TaskStatus{
	model.TaskCompleted:       {model.TaskPendingApproval, model.TaskApproved, model.TaskRejected},
	model.TaskPendingApproval: {model.TaskApproved, model.TaskRejected},
	model.TaskRejected:        {model.TaskAssigned},
}

// CanTransition reports whether SetStatus may move a task from one status
// to another.
func CanTransition(from, to model.TaskStatus) bool {
	for _, s := range reviewTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
