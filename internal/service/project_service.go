package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectboard/internal/model"
	"projectboard/internal/mq"
)

type ProjectService struct {
	projects ProjectStore
	tasks    TaskStore
	comments CommentStore
	producer Publisher
	logger   *zap.Logger

	cascadeDelete bool
}

func NewProjectService(projects ProjectStore, tasks TaskStore, comments CommentStore, producer Publisher, cascadeDelete bool, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects:      projects,
		tasks:         tasks,
		comments:      comments,
		producer:      producer,
		logger:        logger,
		cascadeDelete: cascadeDelete,
	}
}

func (s *ProjectService) Create(ctx context.Context, owner *model.User, name, description string) (*model.Project, error) {
	p := &model.Project{
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
	}

	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.publish("project.created", mq.ProjectCreatedPayload{
		ProjectID: p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
	})

	return p, nil
}

func (s *ProjectService) ListOwned(ctx context.Context, ownerID int) ([]model.Project, error) {
	return s.projects.ListByOwner(ctx, ownerID)
}

// Get returns the caller's project. A project owned by someone else is
// reported as not found, same as a missing one.
func (s *ProjectService) Get(ctx context.Context, ownerID, id int) (*model.Project, error) {
	p, err := s.projects.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update patches name and/or description. The owner field is not patchable.
func (s *ProjectService) Update(ctx context.Context, ownerID, id int, name, description *string) (*model.Project, error) {
	p, err := s.projects.Update(ctx, id, ownerID, name, description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id int) error {
	err := s.projects.Delete(ctx, id, ownerID, s.cascadeDelete)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Detail builds the nested project view: the project, its tasks in
// insertion order, and every comment for those tasks fetched in a single
// batched query and grouped in memory.
func (s *ProjectService) Detail(ctx context.Context, owner *model.User, id int) (*model.ProjectDetail, error) {
	p, err := s.projects.FindOwned(ctx, id, owner.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	taskIDs := make([]int, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	var comments []model.CommentWithAuthor
	if len(taskIDs) > 0 {
		comments, err = s.comments.ListByTaskIDs(ctx, taskIDs)
		if err != nil {
			return nil, err
		}
	}

	byTask := make(map[int][]model.CommentWithAuthor, len(tasks))
	for _, c := range comments {
		byTask[c.TaskID] = append(byTask[c.TaskID], c)
	}

	detail := &model.ProjectDetail{
		Project: *p,
		Owner:   owner.Ref(),
		Tasks:   make([]model.TaskDetail, 0, len(tasks)),
	}
	for _, t := range tasks {
		group := byTask[t.ID]
		if group == nil {
			// a task without comments serializes as [], not null
			group = make([]model.CommentWithAuthor, 0)
		}
		detail.Tasks = append(detail.Tasks, model.TaskDetail{
			TaskWithAssignee: t,
			Comments:         group,
		})
	}

	return detail, nil
}

func (s *ProjectService) publish(routingKey string, payload any) {
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
