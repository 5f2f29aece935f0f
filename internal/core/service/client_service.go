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

type ClientService struct {
	repo   ports.ClientRepository
	logger zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// CreateClient stores a new client owned by actor.
func (s *ClientService) CreateClient(ctx context.Context, actor *domain.User, in ports.ClientInput) (*domain.Client, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	in = normalizeClient(in)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Client{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		CompanyName: in.CompanyName,
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, clientWriteError(err, in.Name)
	}

	s.logger.Info().Int64("client_id", created.ID).Int64("owner_id", actor.ID).Msg("client created")
	return created, nil
}

func (s *ClientService) GetClient(ctx context.Context, actor *domain.User, id int64) (*domain.Client, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, c.OwnerID, domain.ResourceClient); err != nil {
		s.logger.Warn().Int64("actor_id", actor.ID).Int64("client_id", id).Msg("client access denied")
		return nil, err
	}
	return c, nil
}

// ListClients returns every client for admins and the actor's own otherwise.
func (s *ClientService) ListClients(ctx context.Context, actor *domain.User) ([]*domain.Client, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	clients, err := s.repo.List(ctx, scopeOwner(actor))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, actor *domain.User, id int64, in ports.ClientInput) (*domain.Client, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	in = normalizeClient(in)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	c, err := s.GetClient(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.CompanyName = in.CompanyName
	c.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, clientWriteError(err, in.Name)
	}

	s.logger.Info().Int64("client_id", id).Int64("actor_id", actor.ID).Msg("client updated")
	return updated, nil
}

// DeleteClient removes the client and, with it, all of its projects.
func (s *ClientService) DeleteClient(ctx context.Context, actor *domain.User, id int64) error {
	if _, err := s.GetClient(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("client_id", id).Int64("actor_id", actor.ID).Msg("client deleted")
	return nil
}

func normalizeClient(in ports.ClientInput) ports.ClientInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	return in
}

func clientWriteError(err error, name string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domain.AlreadyExists(domain.ResourceClient, fmt.Sprintf("Client with name '%s' already exists", name))
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("save client: %w", err)
}
