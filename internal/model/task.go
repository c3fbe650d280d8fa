package model

import "time"

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the three task states.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type Task struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	ProjectID    int       `json:"project_id"`
	AssignedToID int       `json:"assigned_to_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskWithAssignee is a task with the assignee identity expanded.
type TaskWithAssignee struct {
	Task
	AssignedTo UserRef `json:"assigned_to"`
}

// TaskDetail is a task as it appears inside the project detail view.
// Comments is always non-nil so a task without comments serializes as [].
type TaskDetail struct {
	TaskWithAssignee
	Comments []CommentWithAuthor `json:"comments"`
}
