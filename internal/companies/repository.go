// Package companies reads tenant metadata.
package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Repository handles companies persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ contracts.CompanyRepository = (*Repository)(nil)

// GetByID returns a company or ErrNotFound
func (r *Repository) GetByID(ctx context.Context, id string) (*contracts.Company, error) {
	query := `
		SELECT id, name, COALESCE(display_name, name), created_at
		FROM companies
		WHERE id = $1
	`

	var c contracts.Company
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.DisplayName, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("company %s: %w", id, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query company: %w", err)
	}
	return &c, nil
}

// Upsert creates a company or renames an existing one
func (r *Repository) Upsert(ctx context.Context, c *contracts.Company) error {
	if c.Name == "" {
		c.Name = c.ID
	}

	query := `
		INSERT INTO companies (id, name, display_name)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = COALESCE(EXCLUDED.display_name, companies.display_name)
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, c.ID, c.Name, c.DisplayName).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}
