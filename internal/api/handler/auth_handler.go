package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cpms/cpms-api/internal/api/metrics"
	"github.com/cpms/cpms-api/internal/api/middleware"
	"github.com/cpms/cpms-api/internal/api/response"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,notblank,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register creates a new USER account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_request").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return response.OK(c, http.StatusOK, "User registered successfully", user)
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=loginResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_request").Inc()
		return err
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidCredentials) {
			result = "invalid_credentials"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return response.OK(c, http.StatusOK, "Login successful", loginResponse{Token: token})
}

// Me returns the caller's own account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      401   {object}  response.Envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := middleware.Actor(c, h.authService)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Current user retrieved successfully", actor)
}

// ListUsers returns every account. ADMIN only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  response.Envelope{data=[]domain.User}
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /api/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	actor, err := middleware.Actor(c, h.authService)
	if err != nil {
		return err
	}
	users, err := h.authService.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Users retrieved successfully", users)
}

func registrationResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	case errors.As(err, &ve):
		return "invalid_request"
	default:
		return "error"
	}
}
