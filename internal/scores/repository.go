// Package scores persists long-format capability scores.
package scores

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// Repository handles capability_scores persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ contracts.ScoreRepository = (*Repository)(nil)

// ListByCompany returns a company's scores in insertion order
func (r *Repository) ListByCompany(ctx context.Context, companyID string, filter contracts.TemporalFilter) ([]contracts.ScoreRecord, error) {
	if companyID == "" {
		return nil, fmt.Errorf("list scores: empty company id")
	}
	query, args := buildScoreQuery(companyID, filter)
	records, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores for %s: %w", companyID, err)
	}
	return records, nil
}

// ListAll returns every company's scores (the peer population)
func (r *Repository) ListAll(ctx context.Context, filter contracts.TemporalFilter) ([]contracts.ScoreRecord, error) {
	query, args := buildScoreQuery("", filter)
	records, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all scores: %w", err)
	}
	return records, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]contracts.ScoreRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]contracts.ScoreRecord, 0)
	for rows.Next() {
		var (
			rec                  contracts.ScoreRecord
			dimension, construct int16
		)
		if err := rows.Scan(
			&rec.CompanyID,
			&rec.RespondentID,
			&dimension,
			&construct,
			&rec.Score,
			&rec.AssessmentDate,
			&rec.SurveyWave,
			&rec.CountrySynthetic,
			&rec.RoleSynthetic,
			&rec.IndustrySynthetic,
			&rec.ContinentSynthetic,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.DimensionID = int(dimension)
		rec.ConstructID = int(construct)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountRespondents returns the number of distinct respondents of a company
// within the temporal filter
func (r *Repository) CountRespondents(ctx context.Context, companyID string, filter contracts.TemporalFilter) (int, error) {
	query, args := buildCountQuery(companyID, filter)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count respondents: %w", err)
	}
	return count, nil
}

// FindDuplicates returns (company, respondent, construct, wave) keys with
// more than one row, which happens when a wave is re-imported under a
// different assessment date
func (r *Repository) FindDuplicates(ctx context.Context) ([]contracts.DuplicateGroup, error) {
	query := `
		SELECT company_id, respondent_id, construct_id, survey_wave, COUNT(*)
		FROM capability_scores
		GROUP BY company_id, respondent_id, construct_id, survey_wave
		HAVING COUNT(*) > 1
		ORDER BY company_id, respondent_id, construct_id, survey_wave
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	groups := make([]contracts.DuplicateGroup, 0)
	for rows.Next() {
		var (
			g         contracts.DuplicateGroup
			construct int16
		)
		if err := rows.Scan(&g.CompanyID, &g.RespondentID, &construct, &g.SurveyWave, &g.Rows); err != nil {
			return nil, fmt.Errorf("scan duplicate: %w", err)
		}
		g.ConstructID = int(construct)
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// InsertBatch loads records with COPY into a temp table and upserts them,
// so re-importing the same file is idempotent. Returns rows written.
func (r *Repository) InsertBatch(ctx context.Context, records []contracts.ScoreRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := contracts.ValidateAll(records); err != nil {
		return 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE staging_scores (LIKE capability_scores INCLUDING DEFAULTS)
		ON COMMIT DROP
	`)
	if err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"staging_scores"},
		copyColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
			return copyRow(records[i], today), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy scores: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO capability_scores (
			company_id, respondent_id, dimension_id, construct_id, score,
			assessment_date, survey_wave,
			country_synthetic, role_synthetic, industry_synthetic, continent_synthetic
		)
		SELECT DISTINCT ON (company_id, respondent_id, construct_id, assessment_date, survey_wave)
			company_id, respondent_id, dimension_id, construct_id, score,
			assessment_date, survey_wave,
			country_synthetic, role_synthetic, industry_synthetic, continent_synthetic
		FROM staging_scores
		ORDER BY company_id, respondent_id, construct_id, assessment_date, survey_wave, id DESC
		ON CONFLICT (company_id, respondent_id, construct_id, assessment_date, survey_wave) DO UPDATE SET
			score = EXCLUDED.score,
			dimension_id = EXCLUDED.dimension_id,
			country_synthetic = EXCLUDED.country_synthetic,
			role_synthetic = EXCLUDED.role_synthetic,
			industry_synthetic = EXCLUDED.industry_synthetic,
			continent_synthetic = EXCLUDED.continent_synthetic
	`)
	if err != nil {
		return 0, fmt.Errorf("upsert scores: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit scores: %w", err)
	}

	return tag.RowsAffected(), nil
}

var copyColumns = []string{
	"company_id", "respondent_id", "dimension_id", "construct_id", "score",
	"assessment_date", "survey_wave",
	"country_synthetic", "role_synthetic", "industry_synthetic", "continent_synthetic",
}

// copyRow maps a record to copyColumns, applying column defaults that
// COPY would otherwise skip
func copyRow(rec contracts.ScoreRecord, today time.Time) []interface{} {
	date := rec.AssessmentDate
	if date.IsZero() {
		date = today
	}
	wave := rec.SurveyWave
	if wave == "" {
		wave = DefaultSurveyWave
	}
	return []interface{}{
		rec.CompanyID,
		rec.RespondentID,
		int16(rec.Dimension()),
		int16(rec.ConstructID),
		rec.Score,
		date,
		wave,
		nullable(rec.CountrySynthetic),
		nullable(rec.RoleSynthetic),
		nullable(rec.IndustrySynthetic),
		nullable(rec.ContinentSynthetic),
	}
}

// DefaultSurveyWave is used when an import names no wave
const DefaultSurveyWave = "baseline"

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
