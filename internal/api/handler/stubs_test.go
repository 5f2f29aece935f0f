package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cpms/cpms-api/internal/api/middleware"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

var (
	ann   = &domain.User{ID: 1, Name: "Ann", Email: "ann@x.com", Role: domain.RoleUser}
	admin = &domain.User{ID: 9, Name: "Root", Email: "root@x.com", Role: domain.RoleAdmin}
)

// stubCodec accepts "ann" and "admin" as bearer tokens.
type stubCodec struct{}

func (stubCodec) Issue(*domain.User) (string, error) { return "", nil }

func (stubCodec) Validate(token string) (ports.Identity, error) {
	switch token {
	case "ann":
		return ports.Identity{UserID: ann.ID, Email: ann.Email, Role: ann.Role}, nil
	case "admin":
		return ports.Identity{UserID: admin.ID, Email: admin.Email, Role: admin.Role}, nil
	}
	return ports.Identity{}, domain.ErrTokenInvalid
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
	usersFn    func(ctx context.Context, actor *domain.User) ([]*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ResolveActor(_ context.Context, id ports.Identity) (*domain.User, error) {
	switch id.UserID {
	case ann.ID:
		return ann, nil
	case admin.ID:
		return admin, nil
	}
	return nil, domain.ErrUnauthorized
}

func (s *stubAuthService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	return s.usersFn(ctx, actor)
}

type stubClientService struct {
	createFn func(ctx context.Context, actor *domain.User, in ports.ClientInput) (*domain.Client, error)
	getFn    func(ctx context.Context, actor *domain.User, id int64) (*domain.Client, error)
	listFn   func(ctx context.Context, actor *domain.User) ([]*domain.Client, error)
	updateFn func(ctx context.Context, actor *domain.User, id int64, in ports.ClientInput) (*domain.Client, error)
	deleteFn func(ctx context.Context, actor *domain.User, id int64) error
}

func (s *stubClientService) CreateClient(ctx context.Context, actor *domain.User, in ports.ClientInput) (*domain.Client, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubClientService) GetClient(ctx context.Context, actor *domain.User, id int64) (*domain.Client, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubClientService) ListClients(ctx context.Context, actor *domain.User) ([]*domain.Client, error) {
	return s.listFn(ctx, actor)
}

func (s *stubClientService) UpdateClient(ctx context.Context, actor *domain.User, id int64, in ports.ClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubClientService) DeleteClient(ctx context.Context, actor *domain.User, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

type stubProjectService struct {
	createFn       func(ctx context.Context, actor *domain.User, in ports.ProjectInput) (*domain.Project, error)
	getFn          func(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error)
	listFn         func(ctx context.Context, actor *domain.User) ([]*domain.Project, error)
	listByClientFn func(ctx context.Context, actor *domain.User, clientID int64) ([]*domain.Project, error)
	updateFn       func(ctx context.Context, actor *domain.User, id int64, in ports.ProjectInput) (*domain.Project, error)
	deleteFn       func(ctx context.Context, actor *domain.User, id int64) error
}

func (s *stubProjectService) CreateProject(ctx context.Context, actor *domain.User, in ports.ProjectInput) (*domain.Project, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubProjectService) GetProject(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubProjectService) ListProjects(ctx context.Context, actor *domain.User) ([]*domain.Project, error) {
	return s.listFn(ctx, actor)
}

func (s *stubProjectService) ListProjectsByClient(ctx context.Context, actor *domain.User, clientID int64) ([]*domain.Project, error) {
	return s.listByClientFn(ctx, actor, clientID)
}

func (s *stubProjectService) UpdateProject(ctx context.Context, actor *domain.User, id int64, in ports.ProjectInput) (*domain.Project, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubProjectService) DeleteProject(ctx context.Context, actor *domain.User, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

// call is one request fed straight to a handler.
type call struct {
	method string
	target string
	body   string
	token  string
	params map[string]string
}

// serve runs h behind the Identity middleware and returns the recorder and
// whatever error the handler returned (the error handler is not involved).
func serve(t *testing.T, h echo.HandlerFunc, rq call) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if rq.body != "" {
		body = strings.NewReader(rq.body)
	}
	req := httptest.NewRequest(rq.method, rq.target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if rq.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+rq.token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(rq.params) > 0 {
		names := make([]string, 0, len(rq.params))
		values := make([]string, 0, len(rq.params))
		for name, value := range rq.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	err := middleware.Identity(stubCodec{}, zerolog.Nop(), nil)(h)(c)
	return rec, err
}
