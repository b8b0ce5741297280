package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ainavigator/backend/pkg/config"
	"github.com/wonny/ainavigator/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	if n := j.calls.Add(1); n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newJob(name string, failures int32) *countingJob {
	return &countingJob{name: name, schedule: "@hourly", failures: failures}
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(newJob("b", 0)))
	require.NoError(t, s.AddJob(newJob("a", 0)))
	assert.Error(t, s.AddJob(newJob("a", 0)))
	assert.Equal(t, []string{"a", "b"}, s.Jobs())

	bad := &countingJob{name: "bad", schedule: "not a cron"}
	assert.Error(t, s.AddJob(bad))
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(newJob("a", 0)))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Error(t, s.RemoveJob("a"))

	// history survives removal
	_, err := s.History("a")
	assert.NoError(t, err)
}

func TestRunNow_Retries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(2, time.Millisecond))
	job := newJob("flaky", 2)
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.Stats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, "@hourly", stats.Schedule)
	require.NotNil(t, stats.LastRun)
}

func TestRunNow_GivesUp(t *testing.T) {
	s := New(logger.Nop(), WithRetries(1, time.Millisecond))
	require.NoError(t, s.AddJob(newJob("broken", 100)))

	result, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	history, err := s.History("broken")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0.0, s.Stats()["broken"].SuccessRate)
}

func TestRunNow_NoRetryMessageAfterLastAttempt(t *testing.T) {
	var buf bytes.Buffer
	s := New(logger.NewWithWriter(&config.Config{LogLevel: "debug"}, &buf), WithRetries(2, time.Millisecond))
	require.NoError(t, s.AddJob(newJob("broken", 100)))

	result, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)

	// two retries follow the first two failures; the third failure ends the run
	assert.Equal(t, 2, strings.Count(buf.String(), "Job execution failed, retrying"))
	assert.Equal(t, 1, strings.Count(buf.String(), "Job failed after all retries"))
}

func TestRunNow_CancelledContextStopsRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(5, time.Hour))
	job := newJob("slow", 100)
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunNow(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunNow_Unknown(t *testing.T) {
	s := New(logger.Nop())
	_, err := s.RunNow(context.Background(), "nope")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(newJob("a", 0)))
	s.Start()
	s.Stop()
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 0.5, h.SuccessRate())

	_, ok := (&JobHistory{}).Latest()
	assert.False(t, ok)
}
