// Package jobs holds the background maintenance jobs.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// maxLoggedGroups caps per-group warnings in one run
const maxLoggedGroups = 20

// DuplicateAuditJob reports (company, respondent, construct, wave) keys stored more than once
type DuplicateAuditJob struct {
	scores contracts.ScoreRepository
	logger *logger.Logger

	mu   sync.Mutex
	last []contracts.DuplicateGroup
}

// NewDuplicateAuditJob creates a new duplicate audit job
func NewDuplicateAuditJob(scores contracts.ScoreRepository, log *logger.Logger) *DuplicateAuditJob {
	return &DuplicateAuditJob{
		scores: scores,
		logger: log,
	}
}

// Name returns the job name
func (j *DuplicateAuditJob) Name() string {
	return "duplicate_score_audit"
}

// Schedule returns the cron schedule (daily at 03:00)
func (j *DuplicateAuditJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes the audit
func (j *DuplicateAuditJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting duplicate score audit")

	groups, err := j.scores.FindDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("find duplicates: %w", err)
	}

	j.mu.Lock()
	j.last = groups
	j.mu.Unlock()

	if len(groups) == 0 {
		j.logger.Info("No duplicate capability scores found")
		return nil
	}

	extra := 0
	for i, g := range groups {
		if i >= maxLoggedGroups {
			extra += g.Rows - 1
			continue
		}
		j.logger.WithCompany(g.CompanyID).WithFields(map[string]interface{}{
			"respondent_id": g.RespondentID,
			"construct_id":  g.ConstructID,
			"survey_wave":   g.SurveyWave,
			"rows":          g.Rows,
		}).Warn("Duplicate capability score")
	}

	j.logger.WithFields(map[string]interface{}{
		"groups":          len(groups),
		"unlogged_extras": extra,
	}).Warn("Duplicate score audit found conflicts")

	return nil
}

// LastFindings returns the groups found by the most recent run
func (j *DuplicateAuditJob) LastFindings() []contracts.DuplicateGroup {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]contracts.DuplicateGroup(nil), j.last...)
}
