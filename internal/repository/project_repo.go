package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"projectboard/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (name, description, owner_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, p.Name, p.Description, p.OwnerID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted",
		zap.Int("id", p.ID),
		zap.Int("owner_id", p.OwnerID),
	)
	return nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Project, error) {
	query := `
        SELECT id, name, description, owner_id, created_at, updated_at
        FROM projects
        WHERE owner_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// FindOwned returns the project only when it belongs to ownerID. A project
// owned by someone else surfaces as pgx.ErrNoRows, same as a missing one.
func (r *ProjectRepository) FindOwned(ctx context.Context, id, ownerID int) (*model.Project, error) {
	query := `
        SELECT id, name, description, owner_id, created_at, updated_at
        FROM projects
        WHERE id = $1 AND owner_id = $2
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id, ownerID).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID returns the project regardless of owner. Used to resolve the
// owning project when authorizing task mutations.
func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, name, description, owner_id, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update patches name and/or description. Nil fields keep their stored
// value. The owner column is deliberately not part of the statement.
func (r *ProjectRepository) Update(ctx context.Context, id, ownerID int, name, description *string) (*model.Project, error) {
	query := `
        UPDATE projects
        SET name = COALESCE($3, name),
            description = COALESCE($4, description),
            updated_at = NOW()
        WHERE id = $1 AND owner_id = $2
        RETURNING id, name, description, owner_id, created_at, updated_at
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id, ownerID, name, description).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the owned project. With cascade, child tasks and their
// comments go in the same transaction; without it they are orphaned.
func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID int, cascade bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if cascade {
		if _, err := tx.Exec(ctx,
			`DELETE FROM comments WHERE task_id IN (SELECT id FROM tasks WHERE project_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Project deleted",
		zap.Int("id", id),
		zap.Bool("cascade", cascade),
	)
	return nil
}
