package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cpms/cpms-api/internal/core/domain"
)

const (
	defaultUserTTL = 5 * time.Minute
	userKeyPrefix  = "cpms:user:"
)

// UserCache is a read-through cache of users keyed by email. Entries never
// contain the password hash and expire after ttl.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache wraps client. A non-positive ttl falls back to five minutes.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

// cachedUser is the stored form; it has no field for the hash.
type cachedUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *UserCache) Get(ctx context.Context, email string) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("user cache get: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, false, fmt.Errorf("user cache decode: %w", err)
	}
	return &domain.User{
		ID:        cu.ID,
		Name:      cu.Name,
		Email:     cu.Email,
		Role:      domain.Role(cu.Role),
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}, true, nil
}

func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("user cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(user.Email), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("user cache set: %w", err)
	}
	return nil
}

func (c *UserCache) key(email string) string {
	return userKeyPrefix + email
}
