package handler

import "time"

// dateLayout is the wire format of project start and end dates.
const dateLayout = "2006-01-02"

type projectRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=PLANNED ACTIVE ON_HOLD COMPLETED CANCELLED"`
	ClientID    int64  `json:"client_id" validate:"required,gt=0"`
}

type projectResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Status      string    `json:"status"`
	ClientID    int64     `json:"client_id"`
	ClientName  string    `json:"client_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
