package handler

import (
	"time"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

type clientRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`
}

func (r clientRequest) toInput() ports.ClientInput {
	return ports.ClientInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		CompanyName: r.CompanyName,
	}
}

type clientResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"company_name"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CompanyName: c.CompanyName,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toClientResponses(clients []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}
