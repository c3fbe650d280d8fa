package model

import "time"

type Comment struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	AuthorID  int       `json:"author_id"`
	TaskID    int       `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithAuthor is a comment with the author identity expanded.
type CommentWithAuthor struct {
	Comment
	Author UserRef `json:"author"`
}
