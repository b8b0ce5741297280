package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/database"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

type fakeScores struct {
	contracts.ScoreRepository
	groups []contracts.DuplicateGroup
	err    error
}

func (f *fakeScores) FindDuplicates(ctx context.Context) ([]contracts.DuplicateGroup, error) {
	return f.groups, f.err
}

func TestDuplicateAuditJob(t *testing.T) {
	groups := []contracts.DuplicateGroup{
		{CompanyID: "acme", RespondentID: "r1", ConstructID: 3, SurveyWave: "baseline", Rows: 2},
	}
	job := NewDuplicateAuditJob(&fakeScores{groups: groups}, logger.Nop())

	assert.Equal(t, "duplicate_score_audit", job.Name())
	assert.Equal(t, "0 0 3 * * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, groups, job.LastFindings())
}

func TestDuplicateAuditJob_Clean(t *testing.T) {
	job := NewDuplicateAuditJob(&fakeScores{}, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, job.LastFindings())
}

func TestDuplicateAuditJob_ManyGroups(t *testing.T) {
	groups := make([]contracts.DuplicateGroup, maxLoggedGroups+5)
	for i := range groups {
		groups[i] = contracts.DuplicateGroup{CompanyID: "acme", RespondentID: "r", ConstructID: 1, Rows: 3}
	}
	job := NewDuplicateAuditJob(&fakeScores{groups: groups}, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, job.LastFindings(), maxLoggedGroups+5)
}

func TestDuplicateAuditJob_StoreError(t *testing.T) {
	job := NewDuplicateAuditJob(&fakeScores{err: errors.New("conn reset")}, logger.Nop())
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find duplicates")
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Healthy: f.err == nil, ResponseTime: time.Millisecond}, f.err
}

func TestDBHealthJob(t *testing.T) {
	job := NewDBHealthJob(fakeHealth{}, logger.Nop())
	assert.Equal(t, "db_health", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	job = NewDBHealthJob(fakeHealth{err: errors.New("refused")}, logger.Nop())
	assert.Error(t, job.Run(context.Background()))
}
