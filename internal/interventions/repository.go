// Package interventions serves the remediation catalogue: interventions,
// their capability and sentiment mappings, and taboos.
package interventions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Repository reads the intervention tables
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var (
	_ contracts.InterventionRepository = (*Repository)(nil)
	_ contracts.TabooRepository        = (*Repository)(nil)
)

const interventionColumns = `
	code, name, COALESCE(level, ''), COALESCE(core_function, ''), COALESCE(description, '')`

func scanIntervention(row pgx.Row) (contracts.Intervention, error) {
	var iv contracts.Intervention
	err := row.Scan(&iv.Code, &iv.Name, &iv.Level, &iv.CoreFunction, &iv.Description)
	return iv, err
}

// List returns every intervention ordered by code
func (r *Repository) List(ctx context.Context) ([]contracts.Intervention, error) {
	query := `SELECT` + interventionColumns + ` FROM interventions ORDER BY code`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query interventions: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Intervention, 0)
	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intervention: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// GetByCode returns one intervention or ErrNotFound
func (r *Repository) GetByCode(ctx context.Context, code string) (*contracts.Intervention, error) {
	query := `SELECT` + interventionColumns + ` FROM interventions WHERE code = $1`

	iv, err := scanIntervention(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("intervention %s: %w", code, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query intervention %s: %w", code, err)
	}
	return &iv, nil
}

// GetByCodes returns the interventions found among codes, keyed by code
func (r *Repository) GetByCodes(ctx context.Context, codes []string) (map[string]contracts.Intervention, error) {
	out := make(map[string]contracts.Intervention, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	query := `SELECT` + interventionColumns + ` FROM interventions WHERE code = ANY($1)`
	rows, err := r.db.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("query interventions by code: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		iv, err := scanIntervention(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intervention: %w", err)
		}
		out[iv.Code] = iv
	}
	return out, rows.Err()
}

// CapabilityMapping returns the interventions mapped to a dimension
func (r *Repository) CapabilityMapping(ctx context.Context, dimensionID int) (*contracts.CapabilityMapping, error) {
	query := `
		SELECT
			dimension_id,
			dimension_name,
			COALESCE(rationale, ''),
			COALESCE(primary_intervention_code, ''),
			COALESCE(secondary_intervention_code, ''),
			COALESCE(tertiary_intervention_code, '')
		FROM intervention_capability_mappings
		WHERE dimension_id = $1
	`

	var (
		m   contracts.CapabilityMapping
		dim int16
	)
	err := r.db.QueryRow(ctx, query, dimensionID).Scan(
		&dim, &m.DimensionName, &m.Rationale, &m.Primary, &m.Secondary, &m.Tertiary,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("capability mapping for dimension %d: %w", dimensionID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query capability mapping: %w", err)
	}
	m.DimensionID = int(dim)
	return &m, nil
}

// CellMapping returns the interventions mapped to a sentiment heatmap cell
func (r *Repository) CellMapping(ctx context.Context, levelID, categoryID int) (*contracts.CellMapping, error) {
	query := `
		SELECT
			level_id,
			category_id,
			COALESCE(level_name, ''),
			COALESCE(category, ''),
			COALESCE(reason, ''),
			COALESCE(primary_intervention_code, ''),
			COALESCE(secondary_intervention_code, ''),
			COALESCE(tertiary_intervention_code, '')
		FROM intervention_sentiment_mappings
		WHERE level_id = $1 AND category_id = $2
	`

	var (
		m               contracts.CellMapping
		level, category int16
	)
	err := r.db.QueryRow(ctx, query, levelID, categoryID).Scan(
		&level, &category, &m.LevelName, &m.Category, &m.Reason, &m.Primary, &m.Secondary, &m.Tertiary,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cell mapping %d/%d: %w", levelID, categoryID, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query cell mapping: %w", err)
	}
	m.LevelID = int(level)
	m.CategoryID = int(category)
	return &m, nil
}

// NextSteps returns follow-up interventions, or ErrNotFound when none are defined
func (r *Repository) NextSteps(ctx context.Context, code string) (*contracts.NextSteps, error) {
	query := `
		SELECT
			intervention_code,
			COALESCE(rationale, ''),
			COALESCE(primary_next_code, ''),
			COALESCE(secondary_next_code, ''),
			COALESCE(tertiary_next_code, '')
		FROM intervention_next_steps
		WHERE intervention_code = $1
	`

	var (
		ns                           contracts.NextSteps
		primary, secondary, tertiary string
	)
	err := r.db.QueryRow(ctx, query, code).Scan(&ns.InterventionCode, &ns.Rationale, &primary, &secondary, &tertiary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("next steps for %s: %w", code, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query next steps: %w", err)
	}

	for _, c := range []string{primary, secondary, tertiary} {
		if c != "" {
			ns.NextCodes = append(ns.NextCodes, c)
		}
	}
	return &ns, nil
}

// ListByCell returns taboos for a heatmap cell ordered by name
func (r *Repository) ListByCell(ctx context.Context, levelID, categoryID int) ([]contracts.Taboo, error) {
	query := `
		SELECT
			id,
			level_id,
			category_id,
			COALESCE(level_name, ''),
			COALESCE(root_cause, ''),
			name,
			COALESCE(short_description, ''),
			COALESCE(description, ''),
			COALESCE(how_it_shows_up, ''),
			COALESCE(possible_actions, ''),
			COALESCE(root_cause_explanation, '')
		FROM taboos
		WHERE level_id = $1 AND category_id = $2
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, levelID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query taboos: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Taboo, 0)
	for rows.Next() {
		var (
			t               contracts.Taboo
			id              int64
			level, category int16
		)
		if err := rows.Scan(
			&id, &level, &category,
			&t.LevelName, &t.RootCause, &t.Name, &t.ShortDescription, &t.Description,
			&t.HowItShowsUp, &t.PossibleActions, &t.RootCauseExplanation,
		); err != nil {
			return nil, fmt.Errorf("scan taboo: %w", err)
		}
		t.ID = int(id)
		t.LevelID = int(level)
		t.CategoryID = int(category)
		out = append(out, t)
	}
	return out, rows.Err()
}
