package service

import (
	"context"

	"projectboard/internal/model"
)

// Narrow per-entity store contracts. The pgx repositories implement them;
// tests substitute in-memory fakes. Missing rows surface as pgx.ErrNoRows.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	ListByOwner(ctx context.Context, ownerID int) ([]model.Project, error)
	FindOwned(ctx context.Context, id, ownerID int) (*model.Project, error)
	FindByID(ctx context.Context, id int) (*model.Project, error)
	Update(ctx context.Context, id, ownerID int, name, description *string) (*model.Project, error)
	Delete(ctx context.Context, id, ownerID int, cascade bool) error
}

type TaskStore interface {
	CreateInProject(ctx context.Context, t *model.Task, ownerID int) error
	ListByProject(ctx context.Context, projectID int) ([]model.TaskWithAssignee, error)
	FindByID(ctx context.Context, id int) (*model.Task, error)
	UpdateStatus(ctx context.Context, id int, status string) (*model.Task, error)
	Delete(ctx context.Context, id int) error
}

type CommentStore interface {
	CreateForTask(ctx context.Context, c *model.Comment) error
	ListByTaskIDs(ctx context.Context, taskIDs []int) ([]model.CommentWithAuthor, error)
}

// Publisher emits domain events after durable writes. The RabbitMQ producer
// satisfies it; tests pass a no-op.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// UserCache sits in front of the auth guard's per-request user lookup.
// Implementations must treat a miss and a backend failure the same way.
type UserCache interface {
	Get(ctx context.Context, id int) (*model.User, bool)
	Set(ctx context.Context, u *model.User)
}
