package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cpms/cpms-api/internal/api/metrics"
	"github.com/cpms/cpms-api/internal/api/middleware"
	"github.com/cpms/cpms-api/internal/api/response"
	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service  ports.ProjectService
	resolver middleware.ActorResolver
}

func NewProjectHandler(service ports.ProjectService, resolver middleware.ActorResolver) *ProjectHandler {
	return &ProjectHandler{service: service, resolver: resolver}
}

// Create adds a project under a client the caller may access.
//
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project details"
// @Success      200   {object}  response.Envelope{data=projectResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.CreateProject(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return err
	}

	metrics.ResourcesCreatedTotal.WithLabelValues(domain.ResourceProject).Inc()
	return response.OK(c, http.StatusOK, "Project created successfully", toProjectResponse(project))
}

// Get returns a single project.
//
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  response.Envelope{data=projectResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	project, err := h.service.GetProject(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Project retrieved successfully", toProjectResponse(project))
}

// List returns the projects of the caller's clients, or all for an admin.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]projectResponse}
// @Failure      401  {object}  response.Envelope
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}

	projects, err := h.service.ListProjects(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Projects retrieved successfully", toProjectResponses(projects))
}

// ListByClient returns the projects of one client.
//
// @Summary      List projects of a client
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        clientId  path      int  true  "Client ID"
// @Success      200       {object}  response.Envelope{data=[]projectResponse}
// @Failure      400       {object}  response.Envelope
// @Failure      401       {object}  response.Envelope
// @Failure      403       {object}  response.Envelope
// @Failure      404       {object}  response.Envelope
// @Router       /api/projects/client/{clientId} [get]
func (h *ProjectHandler) ListByClient(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	clientID, err := pathID(c, "clientId")
	if err != nil {
		return err
	}

	projects, err := h.service.ListProjectsByClient(c.Request().Context(), actor, clientID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Projects retrieved successfully", toProjectResponses(projects))
}

// Update replaces a project's fields and may move it to another client.
//
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Project ID"
// @Param        body  body      projectRequest  true  "Project details"
// @Success      200   {object}  response.Envelope{data=projectResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.service.UpdateProject(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Project updated successfully", toProjectResponse(project))
}

// Delete removes a project.
//
// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteProject(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Project deleted successfully", nil)
}
