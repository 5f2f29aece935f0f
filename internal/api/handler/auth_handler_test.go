package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Ann" || in.Email != "ann@x.com" || in.Password != "s3cret" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: 1, Name: in.Name, Email: in.Email, PasswordHash: "hash", Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec, err := serve(t, h.Register, call{
		method: http.MethodPost,
		target: "/api/auth/register",
		body:   `{"name":"Ann","email":"ann@x.com","password":"s3cret"}`,
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "User registered successfully" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Data["role"] != "USER" || resp.Data["email"] != "ann@x.com" {
		t.Fatalf("unexpected user payload: %+v", resp.Data)
	}
	if _, ok := resp.Data["password_hash"]; ok {
		t.Fatalf("password hash leaked: %+v", resp.Data)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.AlreadyExists(domain.ResourceUser, "User with email ann@x.com already exists")
		},
	}
	h := NewAuthHandler(stub)

	_, err := serve(t, h.Register, call{
		method: http.MethodPost,
		target: "/api/auth/register",
		body:   `{"name":"Ann","email":"ann@x.com","password":"s3cret"}`,
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	_, err := serve(t, h.Register, call{method: http.MethodPost, target: "/api/auth/register", body: `{"name":"Ann"}`})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["email"] == "" || ve.Fields["password"] == "" {
		t.Fatalf("expected email and password errors, got %+v", ve.Fields)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if email != "ann@x.com" || password != "s3cret" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return "signed.jwt.token", ann, nil
		},
	}
	h := NewAuthHandler(stub)

	rec, err := serve(t, h.Login, call{
		method: http.MethodPost,
		target: "/api/auth/login",
		body:   `{"email":"ann@x.com","password":"s3cret"}`,
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Login successful" || resp.Data.Token != "signed.jwt.token" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	_, err := serve(t, h.Login, call{
		method: http.MethodPost,
		target: "/api/auth/login",
		body:   `{"email":"ann@x.com","password":"wrong"}`,
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	rec, err := serve(t, h.Me, call{method: http.MethodGet, target: "/api/auth/me", token: "ann"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Data["id"] != float64(1) || resp.Data["email"] != "ann@x.com" {
		t.Fatalf("unexpected user payload: %+v", resp.Data)
	}
}

func TestAuthHandler_ListUsers(t *testing.T) {
	stub := &stubAuthService{
		usersFn: func(_ context.Context, actor *domain.User) ([]*domain.User, error) {
			if actor != admin {
				t.Fatalf("expected admin actor, got %+v", actor)
			}
			return []*domain.User{ann, admin}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec, err := serve(t, h.ListUsers, call{method: http.MethodGet, target: "/api/users", token: "admin"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp.Data))
	}
}
