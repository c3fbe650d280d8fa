package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectboard/internal/model"
	"projectboard/internal/mq"
)

type CommentService struct {
	comments CommentStore
	producer Publisher
	logger   *zap.Logger
}

func NewCommentService(comments CommentStore, producer Publisher, logger *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		producer: producer,
		logger:   logger,
	}
}

// Create adds a comment under an existing task. Any authenticated user may
// comment; there is no ownership restriction.
func (s *CommentService) Create(ctx context.Context, author *model.User, taskID int, text string) (*model.Comment, error) {
	c := &model.Comment{
		Text:     text,
		AuthorID: author.ID,
		TaskID:   taskID,
	}

	if err := s.comments.CreateForTask(ctx, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.publish("comment.created", mq.CommentCreatedPayload{
		CommentID: c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
	})

	return c, nil
}

func (s *CommentService) publish(routingKey string, payload any) {
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
