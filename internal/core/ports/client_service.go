package ports

import (
	"context"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// ClientInput is the mutable part of a client.
type ClientInput struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Phone       string `validate:"required"`
	CompanyName string `validate:"required"`
}

// ClientService defines use-case operations for clients. Every call runs on
// behalf of an explicit actor.
type ClientService interface {
	CreateClient(ctx context.Context, actor *domain.User, in ClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, actor *domain.User, id int64) (*domain.Client, error)
	ListClients(ctx context.Context, actor *domain.User) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, actor *domain.User, id int64, in ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, actor *domain.User, id int64) error
}
