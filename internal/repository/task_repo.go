package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projectboard/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// CreateInProject checks that the project exists and belongs to ownerID,
// then inserts the task. Both steps run in one transaction so a concurrent
// project delete cannot slip between check and write.
func (r *TaskRepository) CreateInProject(ctx context.Context, t *model.Task, ownerID int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var projectID int
	err = tx.QueryRow(ctx,
		`SELECT id FROM projects WHERE id = $1 AND owner_id = $2`,
		t.ProjectID, ownerID,
	).Scan(&projectID)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO tasks (title, description, status, project_id, assigned_to_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err = tx.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.ProjectID, t.AssignedToID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err))
		return err
	}

	return tx.Commit(ctx)
}

// ListByProject returns the project's tasks in insertion order with the
// assignee identity expanded. The assignee is not guaranteed to exist, so
// the join is a LEFT JOIN and missing identities come back empty.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.TaskWithAssignee, error) {
	query := `
        SELECT t.id, t.title, t.description, t.status, t.project_id, t.assigned_to_id,
               t.created_at, t.updated_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM tasks t
        LEFT JOIN users u ON u.id = t.assigned_to_id
        WHERE t.project_id = $1
        ORDER BY t.id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.TaskWithAssignee, 0)
	for rows.Next() {
		var t model.TaskWithAssignee
		err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssignedToID,
			&t.CreatedAt, &t.UpdatedAt,
			&t.AssignedTo.Name, &t.AssignedTo.Email,
		)
		if err != nil {
			return nil, err
		}
		t.AssignedTo.ID = t.AssignedToID
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, title, description, status, project_id, assigned_to_id, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssignedToID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int, status string) (*model.Task, error) {
	query := `
        UPDATE tasks
        SET status = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING id, title, description, status, project_id, assigned_to_id, created_at, updated_at
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id, status).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssignedToID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Task status updated",
		zap.Int("id", id),
		zap.String("status", status),
	)
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
