package ports

import (
	"context"
	"time"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// ProjectInput is the mutable part of a project. An empty Status means
// PLANNED on create and "unchanged" on update.
type ProjectInput struct {
	Title       string `validate:"required"`
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      domain.ProjectStatus `validate:"omitempty,oneof=PLANNED ACTIVE ON_HOLD COMPLETED CANCELLED"`
	ClientID    int64                `validate:"required,gt=0"`
}

// ProjectService defines use-case operations for projects. Ownership is
// resolved through the project's client.
type ProjectService interface {
	CreateProject(ctx context.Context, actor *domain.User, in ProjectInput) (*domain.Project, error)
	GetProject(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context, actor *domain.User) ([]*domain.Project, error)
	ListProjectsByClient(ctx context.Context, actor *domain.User, clientID int64) ([]*domain.Project, error)
	UpdateProject(ctx context.Context, actor *domain.User, id int64, in ProjectInput) (*domain.Project, error)
	DeleteProject(ctx context.Context, actor *domain.User, id int64) error
}
