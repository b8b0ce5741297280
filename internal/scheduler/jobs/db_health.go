package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/ainavigator/backend/pkg/database"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// DBHealthJob pings the database and logs pool statistics
type DBHealthJob struct {
	db     HealthChecker
	logger *logger.Logger
}

// NewDBHealthJob creates a new database health job
func NewDBHealthJob(db HealthChecker, log *logger.Logger) *DBHealthJob {
	return &DBHealthJob{
		db:     db,
		logger: log,
	}
}

// Name returns the job name
func (j *DBHealthJob) Name() string {
	return "db_health"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *DBHealthJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the health check
func (j *DBHealthJob) Run(ctx context.Context) error {
	status, err := j.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database unhealthy: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"response_time": status.ResponseTime,
		"total_conns":   status.Stats.TotalConns,
		"idle_conns":    status.Stats.IdleConns,
		"acquired":      status.Stats.AcquiredConns,
	}).Debug("Database healthy")

	return nil
}
