package mq

type UserRegisteredPayload struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}

type ProjectCreatedPayload struct {
	ProjectID int    `json:"project_id"`
	OwnerID   int    `json:"owner_id"`
	Name      string `json:"name"`
}

type TaskCreatedPayload struct {
	TaskID       int    `json:"task_id"`
	ProjectID    int    `json:"project_id"`
	AssignedToID int    `json:"assigned_to_id"`
	Title        string `json:"title"`
}

type CommentCreatedPayload struct {
	CommentID int `json:"comment_id"`
	TaskID    int `json:"task_id"`
	AuthorID  int `json:"author_id"`
}
