package ports

import (
	"context"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
// A name already used by the same owner yields domain.ErrAlreadyExists.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	// List returns the clients of ownerID, or every client when ownerID is 0.
	List(ctx context.Context, ownerID int64) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) (*domain.Client, error)
	// Delete removes the client together with its projects.
	Delete(ctx context.Context, id int64) error
}
