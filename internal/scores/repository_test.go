package scores

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
		_, _ = repo.db.Exec(context.Background(), `DELETE FROM capability_scores WHERE company_id = $1`, company)
	})

	day := date("2025-01-15")
	records := []contracts.ScoreRecord{
		{CompanyID: company, RespondentID: "r1", ConstructID: 1, Score: 4, AssessmentDate: day, SurveyWave: "baseline", CountrySynthetic: "US"},
		{CompanyID: company, RespondentID: "r1", ConstructID: 2, Score: 2, AssessmentDate: day, SurveyWave: "baseline"},
		{CompanyID: company, RespondentID: "r2", ConstructID: 1, Score: 3, AssessmentDate: day, SurveyWave: "baseline"},
	}

	n, err := repo.InsertBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// re-import is an upsert
	records[0].Score = 5
	_, err = repo.InsertBatch(ctx, records)
	require.NoError(t, err)

	got, err := repo.ListByCompany(ctx, company, contracts.TemporalFilter{SurveyWave: "baseline"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	byKey := make(map[string]float64)
	for _, r := range got {
		byKey[r.RespondentID+"/"+string(rune('0'+r.ConstructID))] = r.Score
	}
	assert.Equal(t, 5.0, byKey["r1/1"])

	count, err := repo.CountRespondents(ctx, company, contracts.TemporalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	none, err := repo.ListByCompany(ctx, company, contracts.TemporalFilter{SurveyWave: "never"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_InsertBatchRejectsInvalid(t *testing.T) {
	repo := &Repository{}
	_, err := repo.InsertBatch(context.Background(), []contracts.ScoreRecord{{RespondentID: "r1"}})
	assert.ErrorIs(t, err, contracts.ErrInvalidRecord)

	n, err := repo.InsertBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
