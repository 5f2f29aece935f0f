package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cpms/cpms-api/internal/core/auth"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T, repo *stubUserRepo, cache ports.UserCache) *AuthService {
	t.Helper()
	codec, err := auth.NewJWTCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return NewAuthService(repo, cache, auth.NewBcryptHasher(bcrypt.MinCost), codec, zerolog.Nop())
}

func annInput() ports.RegisterInput {
	return ports.RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "p1"}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo, nil)

	user, err := svc.Register(context.Background(), annInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if user.PasswordHash != "" {
		t.Fatalf("returned user must not carry the hash")
	}

	stored, _ := repo.FindByEmail(context.Background(), "ann@x.com")
	if stored.PasswordHash == "p1" || stored.PasswordHash == "" {
		t.Fatalf("expected password to be hashed, got %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)

	tests := []struct {
		name  string
		in    ports.RegisterInput
		field string
	}{
		{"blank name", ports.RegisterInput{Name: "  ", Email: "a@x.com", Password: "p"}, "name"},
		{"bad email", ports.RegisterInput{Name: "A", Email: "nope", Password: "p"}, "email"},
		{"blank password", ports.RegisterInput{Name: "A", Email: "a@x.com"}, "password"},
		{"password too long", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("x", 73)}, "password"},
		{"whitespace password", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "    "}, "password"},
		{"password over 72 bytes", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("é", 40)}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Fatalf("expected field %q in %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)

	if _, err := svc.Register(context.Background(), annInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), annInput())
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err.Error() != "User with email ann@x.com already exists" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	// Emails differing only by case are distinct accounts.
	in := annInput()
	in.Email = "ANN@x.com"
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("expected case-distinct email to register, got %v", err)
	}
}

func TestAuthService_CreateAdmin(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)

	admin, err := svc.CreateAdmin(context.Background(), ports.RegisterInput{Name: "Root", Email: "root@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", admin.Role)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)
	if _, err := svc.Register(context.Background(), annInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "ann@x.com", "p1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user.Email != "ann@x.com" || user.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	id, err := svc.tokens.Validate(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if id.Email != "ann@x.com" || id.UserID != user.ID {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)
	_, _ = svc.Register(context.Background(), annInput())

	_, _, wrongPass := svc.Login(context.Background(), "ann@x.com", "bad")
	_, _, unknown := svc.Login(context.Background(), "ghost@x.com", "p1")

	if wrongPass != domain.ErrInvalidCredentials || unknown != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials twice, got %v / %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("connection reset")
	svc := newTestAuthService(t, repo, nil)

	_, _, err := svc.Login(context.Background(), "ann@x.com", "p1")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected an internal error, got %v", err)
	}
}

func TestAuthService_ResolveActor(t *testing.T) {
	repo := newStubUserRepo()
	cache := newStubUserCache()
	svc := newTestAuthService(t, repo, cache)

	ann, _ := svc.Register(context.Background(), annInput())
	id := ports.Identity{UserID: ann.ID, Email: ann.Email}

	first, err := svc.ResolveActor(context.Background(), id)
	if err != nil {
		t.Fatalf("ResolveActor failed: %v", err)
	}
	second, err := svc.ResolveActor(context.Background(), id)
	if err != nil {
		t.Fatalf("ResolveActor failed: %v", err)
	}
	if *first != *second {
		t.Fatalf("resolution not idempotent: %+v vs %+v", first, second)
	}
	if cache.hits != 1 {
		t.Fatalf("expected second lookup to hit the cache, hits=%d", cache.hits)
	}
	if cache.users[ann.Email].PasswordHash != "" {
		t.Fatalf("cached user must not carry the hash")
	}
}

func TestAuthService_ResolveActor_Unknown(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)

	tests := []ports.Identity{
		{},
		{UserID: 9, Email: "ghost@x.com"},
	}
	for _, id := range tests {
		if _, err := svc.ResolveActor(context.Background(), id); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %+v, got %v", id, err)
		}
	}
}

func TestAuthService_ResolveActor_IDMismatch(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)
	ann, _ := svc.Register(context.Background(), annInput())

	_, err := svc.ResolveActor(context.Background(), ports.Identity{UserID: ann.ID + 1, Email: ann.Email})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ResolveActor_EmailMismatch(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)
	ann, _ := svc.Register(context.Background(), annInput())

	_, err := svc.ResolveActor(context.Background(), ports.Identity{UserID: ann.ID, Email: "someone@x.com"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ResolveActor_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo, nil)
	ann, _ := svc.Register(context.Background(), annInput())
	repo.err = errors.New("connection refused")

	_, err := svc.ResolveActor(context.Background(), ports.Identity{UserID: ann.ID, Email: ann.Email})
	if err == nil || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected a store error, got %v", err)
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), nil)
	ann, _ := svc.Register(context.Background(), annInput())
	admin, _ := svc.CreateAdmin(context.Background(), ports.RegisterInput{Name: "Root", Email: "root@x.com", Password: "pw"})

	if _, err := svc.ListUsers(context.Background(), ann); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for USER, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for nil actor, got %v", err)
	}

	users, err := svc.ListUsers(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("user %d leaked its hash", u.ID)
		}
	}
}
