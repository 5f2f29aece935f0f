package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

const projectSelect = `
	SELECT p.id, p.title, p.description, p.start_date, p.end_date, p.status,
		p.client_id, c.name, p.owner_id, p.created_at, p.updated_at
	FROM projects p
	JOIN clients c ON c.id = p.client_id`

// ProjectRepository implements ports.ProjectRepository.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	const query = `
		INSERT INTO projects (title, description, start_date, end_date, status, client_id, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	created := *p
	err := r.db.QueryRowContext(ctx, query,
		p.Title,
		p.Description,
		nullTime(p.StartDate),
		nullTime(p.EndDate),
		p.Status,
		p.ClientID,
		p.OwnerID,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, r.writeError(err, p)
	}
	return &created, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.ResourceProject, id)
		}
		return nil, fmt.Errorf("select project: %w", err)
	}
	return p, nil
}

// List applies the filter; OwnerID matches the owner of the project's client.
func (r *ProjectRepository) List(ctx context.Context, filter ports.ProjectFilter) ([]*domain.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("c.owner_id = $%d", len(args)))
	}
	if filter.ClientID != 0 {
		args = append(args, filter.ClientID)
		conds = append(conds, fmt.Sprintf("p.client_id = $%d", len(args)))
	}

	query := projectSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	const query = `
		UPDATE projects
		SET title = $1,
			description = $2,
			start_date = $3,
			end_date = $4,
			status = $5,
			client_id = $6,
			updated_at = $7
		WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		p.Title,
		p.Description,
		nullTime(p.StartDate),
		nullTime(p.EndDate),
		p.Status,
		p.ClientID,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return nil, r.writeError(err, p)
	}
	if err := checkAffected(res, domain.NotFound(domain.ResourceProject, p.ID)); err != nil {
		return nil, err
	}
	updated := *p
	return &updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM projects WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return checkAffected(res, domain.NotFound(domain.ResourceProject, id))
}

func (r *ProjectRepository) writeError(err error, p *domain.Project) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrAlreadyExists
	case isForeignKeyViolation(err):
		// The client was deleted between the ownership check and the write.
		return domain.NotFound(domain.ResourceClient, p.ClientID)
	default:
		return fmt.Errorf("write project: %w", err)
	}
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p          domain.Project
		start, end sql.NullTime
	)
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&start,
		&end,
		&p.Status,
		&p.ClientID,
		&p.ClientName,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	return &p, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
