// Package respondents persists sentiment survey responses.
package respondents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/internal/scores"
)

// DefaultOpenEndedLimit caps open-ended listings when the caller gives no limit
const DefaultOpenEndedLimit = 100

// Repository handles respondents persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ contracts.RespondentRepository = (*Repository)(nil)

// ListByCompany returns a company's respondents in insertion order
func (r *Repository) ListByCompany(ctx context.Context, companyID string, filter contracts.TemporalFilter) ([]contracts.Respondent, error) {
	if companyID == "" {
		return nil, fmt.Errorf("list respondents: empty company id")
	}
	query, args := buildRespondentQuery(companyID, filter)
	out, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list respondents for %s: %w", companyID, err)
	}
	return out, nil
}

// ListAll returns every company's respondents (the peer population)
func (r *Repository) ListAll(ctx context.Context, filter contracts.TemporalFilter) ([]contracts.Respondent, error) {
	query, args := buildRespondentQuery("", filter)
	out, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all respondents: %w", err)
	}
	return out, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]contracts.Respondent, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]contracts.Respondent, 0)
	for rows.Next() {
		var rec contracts.Respondent
		if err := rows.Scan(
			&rec.CompanyID,
			&rec.RespondentID,
			&rec.Region,
			&rec.Department,
			&rec.EmploymentType,
			&rec.Age,
			&rec.UserLanguage,
			&rec.Industry,
			&rec.Continent,
			&rec.AssessmentDate,
			&rec.SurveyWave,
			&rec.Sentiment,
			&rec.Achievements,
			&rec.Challenges,
			&rec.FutureGoals,
		); err != nil {
			return nil, fmt.Errorf("scan respondent: %w", err)
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

// ListOpenEnded returns a company's respondents with at least one open-ended
// answer, newest first, at most limit rows (DefaultOpenEndedLimit when <= 0)
func (r *Repository) ListOpenEnded(ctx context.Context, companyID string, filter contracts.TemporalFilter, limit int) ([]contracts.OpenEndedResponse, error) {
	query, args := buildOpenEndedQuery(companyID, filter, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query open-ended responses: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.OpenEndedResponse, 0)
	for rows.Next() {
		var rec contracts.OpenEndedResponse
		if err := rows.Scan(
			&rec.RespondentID,
			&rec.Department,
			&rec.Region,
			&rec.SurveyWave,
			&rec.AssessmentDate,
			&rec.Achievements,
			&rec.Challenges,
			&rec.FutureGoals,
		); err != nil {
			return nil, fmt.Errorf("scan open-ended response: %w", err)
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

// InsertBatch upserts respondents on (company, respondent, date, wave) in
// one transaction. Returns rows written.
func (r *Repository) InsertBatch(ctx context.Context, respondents []contracts.Respondent) (int64, error) {
	if len(respondents) == 0 {
		return 0, nil
	}
	for i, rec := range respondents {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("respondent %d: %w", i, err)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	batch := &pgx.Batch{}
	for _, rec := range respondents {
		batch.Queue(upsertRespondent, upsertArgs(rec, today)...)
	}

	results := tx.SendBatch(ctx, batch)
	var written int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("upsert respondent %d: %w", i, err)
		}
		written += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit respondents: %w", err)
	}
	return written, nil
}

const upsertRespondent = `
	INSERT INTO respondents (
		company_id, respondent_id, region, department, employment_type, age,
		user_language, industry, continent, assessment_date, survey_wave,
		sentiment, q39_achievements, q40_challenges, q41_future_goals
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (company_id, respondent_id, assessment_date, survey_wave) DO UPDATE SET
		region = EXCLUDED.region,
		department = EXCLUDED.department,
		employment_type = EXCLUDED.employment_type,
		age = EXCLUDED.age,
		user_language = EXCLUDED.user_language,
		industry = EXCLUDED.industry,
		continent = EXCLUDED.continent,
		sentiment = EXCLUDED.sentiment,
		q39_achievements = EXCLUDED.q39_achievements,
		q40_challenges = EXCLUDED.q40_challenges,
		q41_future_goals = EXCLUDED.q41_future_goals
`

// upsertArgs maps a respondent to upsertRespondent's parameters, applying
// the column defaults an explicit NULL would skip
func upsertArgs(rec contracts.Respondent, today time.Time) []interface{} {
	date := rec.AssessmentDate
	if date.IsZero() {
		date = today
	}
	wave := rec.SurveyWave
	if wave == "" {
		wave = scores.DefaultSurveyWave
	}
	sentiment := rec.Sentiment
	if sentiment == nil {
		sentiment = map[int]float64{}
	}
	return []interface{}{
		rec.CompanyID,
		rec.RespondentID,
		nullable(rec.Region),
		nullable(rec.Department),
		nullable(rec.EmploymentType),
		nullable(rec.Age),
		nullable(rec.UserLanguage),
		nullable(rec.Industry),
		nullable(rec.Continent),
		date,
		wave,
		sentiment,
		rec.Achievements,
		rec.Challenges,
		rec.FutureGoals,
	}
}

const respondentColumns = `
	company_id, respondent_id,
	COALESCE(region, ''), COALESCE(department, ''), COALESCE(employment_type, ''),
	COALESCE(age, ''), COALESCE(user_language, ''), COALESCE(industry, ''),
	COALESCE(continent, ''), assessment_date, survey_wave, sentiment,
	q39_achievements, q40_challenges, q41_future_goals`

// buildRespondentQuery builds the SELECT for a company (empty = every
// company) narrowed by a temporal filter
func buildRespondentQuery(companyID string, f contracts.TemporalFilter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if companyID != "" {
		args = append(args, companyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	where, args = scores.AppendTemporal(where, args, f)

	var sb strings.Builder
	sb.WriteString("SELECT")
	sb.WriteString(respondentColumns)
	sb.WriteString("\nFROM respondents")
	if len(where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\nORDER BY id")
	return sb.String(), args
}

func buildOpenEndedQuery(companyID string, f contracts.TemporalFilter, limit int) (string, []interface{}) {
	if limit <= 0 {
		limit = DefaultOpenEndedLimit
	}
	where := []string{
		"company_id = $1",
		"(q39_achievements IS NOT NULL OR q40_challenges IS NOT NULL OR q41_future_goals IS NOT NULL)",
	}
	args := []interface{}{companyID}
	where, args = scores.AppendTemporal(where, args, f)
	args = append(args, limit)

	query := `SELECT respondent_id, COALESCE(department, ''), COALESCE(region, ''),
	survey_wave, assessment_date, q39_achievements, q40_challenges, q41_future_goals
FROM respondents
WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf("\nORDER BY assessment_date DESC, id\nLIMIT $%d", len(args))
	return query, args
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
