package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projectboard/internal/model"
)

// cachedUser is the stored shape. The password hash is never cached; the
// auth guard has no use for it.
type cachedUser struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCache keeps resolved users for a short TTL so the auth guard does not
// hit Postgres on every request. Redis failures degrade to cache misses.
type UserCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewUserCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *UserCache {
	return &UserCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *UserCache) Get(ctx context.Context, id int) (*model.User, bool) {
	raw, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("User cache read failed", zap.Int("user_id", id), zap.Error(err))
		}
		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, false
	}

	return &model.User{
		ID:        cu.ID,
		Name:      cu.Name,
		Email:     cu.Email,
		CreatedAt: cu.CreatedAt,
	}, true
}

func (c *UserCache) Set(ctx context.Context, u *model.User) {
	raw, err := json.Marshal(cachedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, userKey(u.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("User cache write failed", zap.Int("user_id", u.ID), zap.Error(err))
	}
}

func userKey(id int) string {
	return fmt.Sprintf("user:%d", id)
}
