// Package periods stores named assessment periods (survey waves) per company.
package periods

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// ErrDuplicateWave is returned when a company already has a period for the wave
var ErrDuplicateWave = errors.New("assessment period already exists for survey wave")

const uniqueViolation = "23505"

// Repository handles assessment_periods persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ contracts.PeriodRepository = (*Repository)(nil)

// ListByCompany returns a company's periods, newest assessment first
func (r *Repository) ListByCompany(ctx context.Context, companyID string) ([]contracts.AssessmentPeriod, error) {
	query := `
		SELECT
			id,
			company_id,
			survey_wave,
			assessment_date,
			name,
			COALESCE(description, ''),
			interventions_applied,
			status,
			created_at
		FROM assessment_periods
		WHERE company_id = $1
		ORDER BY assessment_date DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query assessment periods: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.AssessmentPeriod, 0)
	for rows.Next() {
		var p contracts.AssessmentPeriod
		if err := rows.Scan(
			&p.ID,
			&p.CompanyID,
			&p.SurveyWave,
			&p.AssessmentDate,
			&p.Name,
			&p.Description,
			&p.InterventionsApplied,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assessment period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a period and fills its id, status and created_at
func (r *Repository) Create(ctx context.Context, p *contracts.AssessmentPeriod) error {
	if p.Status == "" {
		p.Status = contracts.PeriodStatusActive
	}
	if p.InterventionsApplied == nil {
		p.InterventionsApplied = []string{}
	}

	query := `
		INSERT INTO assessment_periods (
			company_id, survey_wave, assessment_date, name, description, interventions_applied, status
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		p.CompanyID,
		p.SurveyWave,
		p.AssessmentDate,
		p.Name,
		p.Description,
		p.InterventionsApplied,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateWave, p.SurveyWave)
	}
	if err != nil {
		return fmt.Errorf("insert assessment period: %w", err)
	}
	return nil
}
