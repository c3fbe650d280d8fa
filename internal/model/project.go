package model

import "time"

type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDetail is the aggregated read: the project with its owner expanded
// and every task nested, each carrying its own comments.
type ProjectDetail struct {
	Project
	Owner UserRef      `json:"owner"`
	Tasks []TaskDetail `json:"tasks"`
}
