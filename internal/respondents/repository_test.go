package respondents

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

func date(s string) time.Time {
	d, _ := time.Parse(contracts.DateLayout, s)
	return d
}

func strPtr(s string) *string { return &s }

func TestBuildRespondentQuery(t *testing.T) {
	d := date("2025-03-01")

	query, args := buildRespondentQuery("acme", contracts.TemporalFilter{AssessmentDate: &d, SurveyWave: "ignored"})
	assert.Contains(t, query, "FROM respondents")
	assert.Contains(t, query, "WHERE company_id = $1 AND assessment_date = $2")
	assert.NotContains(t, query, "survey_wave =")
	assert.Equal(t, []interface{}{"acme", d}, args)

	query, args = buildRespondentQuery("", contracts.TemporalFilter{SurveyWave: "pulse"})
	assert.Contains(t, query, "WHERE survey_wave = $1")
	assert.Len(t, args, 1)

	query, args = buildRespondentQuery("", contracts.TemporalFilter{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestBuildOpenEndedQuery(t *testing.T) {
	query, args := buildOpenEndedQuery("acme", contracts.TemporalFilter{SurveyWave: "baseline"}, 0)
	assert.Contains(t, query, "q39_achievements IS NOT NULL OR q40_challenges IS NOT NULL OR q41_future_goals IS NOT NULL")
	assert.Contains(t, query, "survey_wave = $2")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []interface{}{"acme", "baseline", DefaultOpenEndedLimit}, args)

	_, args = buildOpenEndedQuery("acme", contracts.TemporalFilter{}, 5)
	assert.Equal(t, []interface{}{"acme", 5}, args)
}

func TestUpsertArgsDefaults(t *testing.T) {
	today := date("2025-06-01")
	args := upsertArgs(contracts.Respondent{CompanyID: "acme", RespondentID: "r1", Region: "US"}, today)

	require.Len(t, args, 15)
	assert.Equal(t, "US", *args[2].(*string))
	assert.Nil(t, args[3].(*string))
	assert.Equal(t, today, args[9])
	assert.Equal(t, "baseline", args[10])
	assert.Equal(t, map[int]float64{}, args[11])
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepository(pool)
}

func TestRepository_InsertAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	company := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		_, _ = repo.db.Exec(context.Background(), `DELETE FROM respondents WHERE company_id = $1`, company)
	})

	day := date("2025-01-15")
	rows := []contracts.Respondent{
		{CompanyID: company, RespondentID: "r1", Region: "US", Department: "Sales", AssessmentDate: day,
			SurveyWave: "baseline", Sentiment: map[int]float64{1: 2, 25: 4}, Challenges: strPtr("no budget")},
		{CompanyID: company, RespondentID: "r2", AssessmentDate: day, SurveyWave: "baseline",
			Sentiment: map[int]float64{1: 3}},
	}

	n, err := repo.InsertBatch(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// re-import is an upsert
	rows[1].Sentiment[1] = 1
	_, err = repo.InsertBatch(ctx, rows)
	require.NoError(t, err)

	got, err := repo.ListByCompany(ctx, company, contracts.TemporalFilter{SurveyWave: "baseline"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4.0, got[0].Sentiment[25])
	assert.Equal(t, "Sales", got[0].Department)
	assert.Equal(t, 1.0, got[1].Sentiment[1])
	assert.Empty(t, got[1].Region)

	open, err := repo.ListOpenEnded(ctx, company, contracts.TemporalFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "r1", open[0].RespondentID)
	assert.Nil(t, open[0].Achievements)
	assert.Equal(t, "no budget", *open[0].Challenges)
}

func TestRepository_InsertRejectsBadShape(t *testing.T) {
	repo := &Repository{}
	_, err := repo.InsertBatch(context.Background(), []contracts.Respondent{{CompanyID: "acme"}})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)
}
