package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
	"github.com/cpms/cpms-api/internal/pkg/validate"
)

// ProjectService guards projects through the client they belong to.
type ProjectService struct {
	repo    ports.ProjectRepository
	clients ports.ClientRepository
	logger  zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, clients ports.ClientRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, clients: clients, logger: logger}
}

func (s *ProjectService) CreateProject(ctx context.Context, actor *domain.User, in ports.ProjectInput) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkProjectInput(&in); err != nil {
		return nil, err
	}

	client, err := s.entitledClient(ctx, actor, in.ClientID)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.ProjectPlanned
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Project{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      status,
		ClientID:    client.ID,
		ClientName:  client.Name,
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, projectWriteError(err, in.Title)
	}

	s.logger.Info().Int64("project_id", created.ID).Int64("client_id", client.ID).Int64("actor_id", actor.ID).Msg("project created")
	return created, nil
}

func (s *ProjectService) GetProject(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, p.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(domain.ResourceProject, id)
		}
		return nil, err
	}
	if err := authorize(actor, client.OwnerID, domain.ResourceProject); err != nil {
		s.logger.Warn().Int64("actor_id", actor.ID).Int64("project_id", id).Msg("project access denied")
		return nil, err
	}
	return p, nil
}

// ListProjects returns every project for admins and the projects of the
// actor's clients otherwise.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User) ([]*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	projects, err := s.repo.List(ctx, ports.ProjectFilter{OwnerID: scopeOwner(actor)})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) ListProjectsByClient(ctx context.Context, actor *domain.User, clientID int64) ([]*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if _, err := s.entitledClient(ctx, actor, clientID); err != nil {
		return nil, err
	}
	projects, err := s.repo.List(ctx, ports.ProjectFilter{ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject replaces the mutable fields. Moving the project to another
// client requires access to that client as well.
func (s *ProjectService) UpdateProject(ctx context.Context, actor *domain.User, id int64, in ports.ProjectInput) (*domain.Project, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := checkProjectInput(&in); err != nil {
		return nil, err
	}

	p, err := s.GetProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.ClientID != p.ClientID {
		client, err := s.entitledClient(ctx, actor, in.ClientID)
		if err != nil {
			return nil, err
		}
		p.ClientID = client.ID
		p.ClientName = client.Name
	}

	p.Title = in.Title
	p.Description = in.Description
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	if in.Status != "" {
		p.Status = in.Status
	}
	p.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, projectWriteError(err, in.Title)
	}

	s.logger.Info().Int64("project_id", id).Int64("actor_id", actor.ID).Msg("project updated")
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, actor *domain.User, id int64) error {
	if _, err := s.GetProject(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("project_id", id).Int64("actor_id", actor.ID).Msg("project deleted")
	return nil
}

// entitledClient loads a client and checks the actor may attach projects to it.
func (s *ProjectService) entitledClient(ctx context.Context, actor *domain.User, clientID int64) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, client.OwnerID, domain.ResourceClient); err != nil {
		s.logger.Warn().Int64("actor_id", actor.ID).Int64("client_id", clientID).Msg("client access denied")
		return nil, err
	}
	return client, nil
}

func checkProjectInput(in *ports.ProjectInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return domain.NewValidationError("end_date", "end_date must not be before start_date")
	}
	return nil
}

func projectWriteError(err error, title string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domain.AlreadyExists(domain.ResourceProject, fmt.Sprintf("Project with title '%s' already exists for this client", title))
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("save project: %w", err)
}
