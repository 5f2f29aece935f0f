package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cpms/cpms-api/internal/core/domain"
)

const clientColumns = `id, name, email, phone, company_name, owner_id, created_at, updated_at`

// ClientRepository implements ports.ClientRepository.
type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	const query = `
		INSERT INTO clients (name, email, phone, company_name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	created := *c
	err := r.db.QueryRowContext(ctx, query,
		c.Name,
		c.Email,
		c.Phone,
		c.CompanyName,
		c.OwnerID,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&created.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return &created, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.ResourceClient, id)
		}
		return nil, fmt.Errorf("select client: %w", err)
	}
	return c, nil
}

// List returns the clients of ownerID ordered by id; ownerID 0 lists all.
func (r *ClientRepository) List(ctx context.Context, ownerID int64) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if ownerID != 0 {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	const query = `
		UPDATE clients
		SET name = $1,
			email = $2,
			phone = $3,
			company_name = $4,
			updated_at = $5
		WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.Email,
		c.Phone,
		c.CompanyName,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	if err := checkAffected(res, domain.NotFound(domain.ResourceClient, c.ID)); err != nil {
		return nil, err
	}
	updated := *c
	return &updated, nil
}

// Delete removes the client; its projects go with it through ON DELETE CASCADE.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM clients WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return checkAffected(res, domain.NotFound(domain.ResourceClient, id))
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.CompanyName,
		&c.OwnerID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
