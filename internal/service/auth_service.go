package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"projectboard/internal/model"
	"projectboard/internal/mq"
	"projectboard/internal/util"
)

const uniqueViolation = "23505"

type AuthService struct {
	users     UserStore
	cache     UserCache
	producer  Publisher
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, cache UserCache, producer Publisher, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		cache:     cache,
		producer:  producer,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a new user and issues a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, *model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		// The unique index catches the race between check and insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", nil, ErrEmailTaken
		}
		return "", nil, err
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	s.publish("user.registered", mq.UserRegisteredPayload{
		UserID: u.ID,
		Email:  u.Email,
	})

	return token, u, nil
}

// Login checks credentials and returns a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// ResolveUser maps a token subject to a stored user, consulting the cache
// first. A vanished user comes back as ErrNotFound.
func (s *AuthService) ResolveUser(ctx context.Context, id int) (*model.User, error) {
	if s.cache != nil {
		if u, ok := s.cache.Get(ctx, id); ok {
			return u, nil
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, u)
	}
	return u, nil
}

// ListUsers returns every registered user, hashes excluded.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) publish(routingKey string, payload any) {
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
