package ports

import (
	"context"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// ProjectFilter narrows project listings. Zero values mean "no filter".
type ProjectFilter struct {
	// OwnerID keeps projects whose client is owned by this user.
	OwnerID  int64
	ClientID int64
}

// ProjectRepository defines persistence operations for projects. Returned
// projects carry ClientName. A title already used under the same client
// yields domain.ErrAlreadyExists.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id int64) error
}
