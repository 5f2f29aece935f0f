package ports

import (
	"context"

	"github.com/cpms/cpms-api/internal/core/domain"
)

// Identity is what a validated bearer token proves about its holder.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Role   domain.Role
}

// TokenCodec issues and validates signed, time-bounded bearer tokens.
// Validate fails with domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenCodec interface {
	Issue(user *domain.User) (string, error)
	Validate(token string) (Identity, error)
}

// PasswordHasher is a one-way salted hash. Verify never errors; a malformed
// hash simply does not match.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,notblank,maxbytes=72"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// CreateAdmin registers a user with the ADMIN role. Only reachable from
	// the operator CLI.
	CreateAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// ResolveActor loads the full user behind a token identity.
	ResolveActor(ctx context.Context, id Identity) (*domain.User, error)
	ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error)
}
