package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"projectboard/internal/model"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateForTask verifies the task exists and inserts the comment in one
// transaction.
func (r *CommentRepository) CreateForTask(ctx context.Context, c *model.Comment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taskID int
	err = tx.QueryRow(ctx, `SELECT id FROM tasks WHERE id = $1`, c.TaskID).Scan(&taskID)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO comments (text, author_id, task_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query, c.Text, c.AuthorID, c.TaskID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByTaskIDs fetches the comments for every task in one batched query,
// in insertion order, with the author identity expanded.
func (r *CommentRepository) ListByTaskIDs(ctx context.Context, taskIDs []int) ([]model.CommentWithAuthor, error) {
	query := `
        SELECT c.id, c.text, c.author_id, c.task_id, c.created_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM comments c
        LEFT JOIN users u ON u.id = c.author_id
        WHERE c.task_id = ANY($1)
        ORDER BY c.id
    `
	rows, err := r.db.Query(ctx, query, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]model.CommentWithAuthor, 0)
	for rows.Next() {
		var c model.CommentWithAuthor
		err := rows.Scan(
			&c.ID, &c.Text, &c.AuthorID, &c.TaskID, &c.CreatedAt,
			&c.Author.Name, &c.Author.Email,
		)
		if err != nil {
			return nil, err
		}
		c.Author.ID = c.AuthorID
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
