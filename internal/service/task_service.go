package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectboard/internal/model"
	"projectboard/internal/mq"
)

type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
	producer Publisher
	logger   *zap.Logger
}

func NewTaskService(tasks TaskStore, projects ProjectStore, producer Publisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		producer: producer,
		logger:   logger,
	}
}

// Create adds a task under a project the caller owns. The assignee defaults
// to the creator; whether the assignee refers to a real user is not checked.
func (s *TaskService) Create(ctx context.Context, owner *model.User, projectID int, title, description string, assignedTo *int) (*model.Task, error) {
	assignee := owner.ID
	if assignedTo != nil {
		assignee = *assignedTo
	}

	t := &model.Task{
		Title:        title,
		Description:  description,
		Status:       model.StatusTodo,
		ProjectID:    projectID,
		AssignedToID: assignee,
	}

	if err := s.tasks.CreateInProject(ctx, t, owner.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.publish("task.created", mq.TaskCreatedPayload{
		TaskID:       t.ID,
		ProjectID:    t.ProjectID,
		AssignedToID: t.AssignedToID,
		Title:        t.Title,
	})

	return t, nil
}

// ListByProject returns the project's tasks, assignee expanded. The project
// must exist and belong to the caller.
func (s *TaskService) ListByProject(ctx context.Context, ownerID, projectID int) ([]model.TaskWithAssignee, error) {
	if _, err := s.projects.FindOwned(ctx, projectID, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

// UpdateStatus moves a task to a new state. Only the assignee or the owning
// project's owner may do so.
func (s *TaskService) UpdateStatus(ctx context.Context, caller *model.User, taskID int, status string) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.authorize(ctx, caller, t); err != nil {
		return nil, err
	}

	updated, err := s.tasks.UpdateStatus(ctx, taskID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a task under the same policy as UpdateStatus.
func (s *TaskService) Delete(ctx context.Context, caller *model.User, taskID int) error {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.authorize(ctx, caller, t); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// authorize allows the assignee and the owning project's owner.
func (s *TaskService) authorize(ctx context.Context, caller *model.User, t *model.Task) error {
	if caller.ID == t.AssignedToID {
		return nil
	}

	p, err := s.projects.FindByID(ctx, t.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// orphaned task, caller is not its assignee
			return ErrForbidden
		}
		return err
	}
	if caller.ID != p.OwnerID {
		return ErrForbidden
	}
	return nil
}

func (s *TaskService) publish(routingKey string, payload any) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
