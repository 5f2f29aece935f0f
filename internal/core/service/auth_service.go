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

// AuthService implements registration, login and actor resolution.
type AuthService struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	logger zerolog.Logger
}

// NewAuthService wires the authenticator. cache may be nil.
func NewAuthService(
	repo ports.UserRepository,
	cache ports.UserCache,
	hasher ports.PasswordHasher,
	tokens ports.TokenCodec,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, cache: cache, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleUser)
}

func (s *AuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, emailTaken(in.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race against a concurrent registration.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, emailTaken(in.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	return withoutHash(created), nil
}

// Login returns a signed token for the user. Unknown email and wrong password
// fail identically with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Debug().Int64("user_id", user.ID).Msg("user logged in")
	return token, withoutHash(user), nil
}

// ResolveActor loads the user a validated token speaks for. A user that no
// longer exists, or whose email no longer matches the token, is unauthorized.
func (s *AuthService) ResolveActor(ctx context.Context, id ports.Identity) (*domain.User, error) {
	if id.Email == "" {
		return nil, domain.ErrUnauthorized
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id.Email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("user cache get failed")
		} else if ok && cached.ID == id.UserID {
			return cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if user.Email != id.Email {
		return nil, domain.ErrUnauthorized
	}

	user = withoutHash(user)
	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.logger.Warn().Err(err).Msg("user cache set failed")
		}
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, domain.AccessDenied(domain.ResourceUser)
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i, u := range users {
		users[i] = withoutHash(u)
	}
	return users, nil
}

func emailTaken(email string) error {
	return domain.AlreadyExists(domain.ResourceUser, fmt.Sprintf("User with email %s already exists", email))
}

func withoutHash(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
