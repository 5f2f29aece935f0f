package handler

import (
	"time"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

// toInput assumes the request already passed validation, so dates parse.
func (r projectRequest) toInput() ports.ProjectInput {
	return ports.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   parseDate(r.StartDate),
		EndDate:     parseDate(r.EndDate),
		Status:      domain.ProjectStatus(r.Status),
		ClientID:    r.ClientID,
	}
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   formatDate(p.StartDate),
		EndDate:     formatDate(p.EndDate),
		Status:      string(p.Status),
		ClientID:    p.ClientID,
		ClientName:  p.ClientName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectResponses(projects []*domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
