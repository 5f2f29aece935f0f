package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/cpms/cpms-api/internal/api/handler"
	"github.com/cpms/cpms-api/internal/api/middleware"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
	"github.com/cpms/cpms-api/internal/infrastructure/http/handlers"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Logger         zerolog.Logger
	Tokens         ports.TokenCodec
	AuthService    ports.AuthService
	ClientService  ports.ClientService
	ProjectService ports.ProjectService
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handlers.Check
	// Registry defaults to the prometheus default registry.
	Registry *prometheus.Registry
}

// publicPaths skip token parsing entirely.
var publicPaths = map[string]struct{}{
	"/api/auth/register": {},
	"/api/auth/login":    {},
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "cpms",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
		},
	}))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)
	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- API ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	clientHandler := handler.NewClientHandler(d.ClientService, d.AuthService)
	projectHandler := handler.NewProjectHandler(d.ProjectService, d.AuthService)

	apiGroup := e.Group("/api", middleware.Identity(d.Tokens, d.Logger, func(c echo.Context) bool {
		_, ok := publicPaths[c.Path()]
		return ok
	}))

	auth := apiGroup.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me)

	users := apiGroup.Group("/users", middleware.RBAC(d.AuthService, domain.ResourceUser, domain.RoleAdmin))
	users.GET("", authHandler.ListUsers)

	clients := apiGroup.Group("/clients")
	clients.POST("", clientHandler.Create)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	projects := apiGroup.Group("/projects")
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.GET("/client/:clientId", projectHandler.ListByClient)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	return e
}
