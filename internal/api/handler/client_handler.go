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

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service  ports.ClientService
	resolver middleware.ActorResolver
}

func NewClientHandler(service ports.ClientService, resolver middleware.ActorResolver) *ClientHandler {
	return &ClientHandler{service: service, resolver: resolver}
}

// Create adds a client owned by the caller.
//
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clientRequest  true  "Client details"
// @Success      200   {object}  response.Envelope{data=clientResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.CreateClient(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return err
	}

	metrics.ResourcesCreatedTotal.WithLabelValues(domain.ResourceClient).Inc()
	return response.OK(c, http.StatusOK, "Client created successfully", toClientResponse(client))
}

// Get returns a single client.
//
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  response.Envelope{data=clientResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	client, err := h.service.GetClient(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Client retrieved successfully", toClientResponse(client))
}

// List returns the caller's clients, or all clients for an admin.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]clientResponse}
// @Failure      401  {object}  response.Envelope
// @Router       /api/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}

	clients, err := h.service.ListClients(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Clients retrieved successfully", toClientResponses(clients))
}

// Update replaces a client's fields.
//
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Client ID"
// @Param        body  body      clientRequest  true  "Client details"
// @Success      200   {object}  response.Envelope{data=clientResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client, err := h.service.UpdateClient(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Client updated successfully", toClientResponse(client))
}

// Delete removes a client and its projects.
//
// @Summary      Delete client
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	actor, err := middleware.Actor(c, h.resolver)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteClient(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, "Client deleted successfully", nil)
}
