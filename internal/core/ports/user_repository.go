package ports

import (
	"context"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a user and returns it with its ID assigned. A duplicate
	// email yields an error matching domain.ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail matches the email exactly. Missing rows yield domain.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// UserCache is an optional read-through cache in front of UserRepository,
// keyed by email. Cached users never carry a password hash.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool, error)
	Set(ctx context.Context, user *domain.User) error
}
