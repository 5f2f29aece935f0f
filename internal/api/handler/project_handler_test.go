package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

func TestProjectHandler_Create_MapsDatesAndStatus(t *testing.T) {
	stub := &stubProjectService{
		createFn: func(_ context.Context, _ *domain.User, in ports.ProjectInput) (*domain.Project, error) {
			if in.ClientID != 4 || in.Status != domain.ProjectActive {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.StartDate == nil || !in.StartDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected start date: %v", in.StartDate)
			}
			if in.EndDate != nil {
				t.Fatalf("expected no end date, got %v", in.EndDate)
			}
			return &domain.Project{ID: 11, Title: in.Title, StartDate: in.StartDate, Status: in.Status,
				ClientID: in.ClientID, ClientName: "Acme"}, nil
		},
	}
	h := NewProjectHandler(stub, &stubAuthService{})

	rec, err := serve(t, h.Create, call{
		method: http.MethodPost,
		target: "/api/projects",
		body:   `{"title":"Website","start_date":"2024-05-01","status":"ACTIVE","client_id":4}`,
		token:  "ann",
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Project created successfully" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Data["start_date"] != "2024-05-01" || resp.Data["client_name"] != "Acme" || resp.Data["status"] != "ACTIVE" {
		t.Fatalf("unexpected project payload: %+v", resp.Data)
	}
	if _, ok := resp.Data["end_date"]; ok {
		t.Fatalf("expected end_date omitted, got %v", resp.Data["end_date"])
	}
}

func TestProjectHandler_Create_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing title", `{"client_id":1}`, "title"},
		{"missing client", `{"title":"T"}`, "client_id"},
		{"bad date", `{"title":"T","client_id":1,"start_date":"01/05/2024"}`, "start_date"},
		{"unknown status", `{"title":"T","client_id":1,"status":"DONE"}`, "status"},
	}

	h := NewProjectHandler(&stubProjectService{}, &stubAuthService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serve(t, h.Create, call{method: http.MethodPost, target: "/api/projects", body: tt.body, token: "ann"})

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Fatalf("expected error on %s, got %+v", tt.field, ve.Fields)
			}
		})
	}
}

func TestProjectHandler_ListByClient(t *testing.T) {
	stub := &stubProjectService{
		listByClientFn: func(_ context.Context, actor *domain.User, clientID int64) ([]*domain.Project, error) {
			if clientID != 4 || actor != admin {
				t.Fatalf("unexpected call: client %d actor %+v", clientID, actor)
			}
			return []*domain.Project{{ID: 1, Title: "A", ClientID: 4}, {ID: 2, Title: "B", ClientID: 4}}, nil
		},
	}
	h := NewProjectHandler(stub, &stubAuthService{})

	rec, err := serve(t, h.ListByClient, call{
		method: http.MethodGet,
		target: "/api/projects/client/4",
		token:  "admin",
		params: map[string]string{"clientId": "4"},
	})
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
		t.Fatalf("expected 2 projects, got %d", len(resp.Data))
	}
}

func TestProjectHandler_ListByClient_BadID(t *testing.T) {
	h := NewProjectHandler(&stubProjectService{}, &stubAuthService{})

	_, err := serve(t, h.ListByClient, call{
		method: http.MethodGet,
		target: "/api/projects/client/x",
		token:  "ann",
		params: map[string]string{"clientId": "x"},
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["clientId"] == "" {
		t.Fatalf("expected clientId ValidationError, got %v", err)
	}
}

func TestProjectHandler_Get_NotFound(t *testing.T) {
	stub := &stubProjectService{
		getFn: func(_ context.Context, _ *domain.User, id int64) (*domain.Project, error) {
			return nil, domain.NotFound(domain.ResourceProject, id)
		},
	}
	h := NewProjectHandler(stub, &stubAuthService{})

	_, err := serve(t, h.Get, call{method: http.MethodGet, target: "/api/projects/8", token: "ann", params: map[string]string{"id": "8"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectHandler_Update_PassesID(t *testing.T) {
	stub := &stubProjectService{
		updateFn: func(_ context.Context, _ *domain.User, id int64, in ports.ProjectInput) (*domain.Project, error) {
			if id != 6 || in.Title != "Renamed" || in.Status != "" {
				t.Fatalf("unexpected update: %d %+v", id, in)
			}
			return &domain.Project{ID: id, Title: in.Title, Status: domain.ProjectPlanned, ClientID: in.ClientID}, nil
		},
	}
	h := NewProjectHandler(stub, &stubAuthService{})

	rec, err := serve(t, h.Update, call{
		method: http.MethodPut,
		target: "/api/projects/6",
		body:   `{"title":"Renamed","client_id":2}`,
		token:  "ann",
		params: map[string]string{"id": "6"},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	called := false
	stub := &stubProjectService{
		deleteFn: func(_ context.Context, _ *domain.User, id int64) error {
			called = id == 3
			return nil
		},
	}
	h := NewProjectHandler(stub, &stubAuthService{})

	if _, err := serve(t, h.Delete, call{method: http.MethodDelete, target: "/api/projects/3", token: "ann", params: map[string]string{"id": "3"}}); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("expected project 3 deleted")
	}
}
