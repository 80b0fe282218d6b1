package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule string
	err      error
	runs     atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_RegisterAndRunByName(t *testing.T) {
	s := NewScheduler()
	onDemand := &countingJob{name: "on-demand"}
	failing := &countingJob{name: "failing", schedule: "@every 1h", err: errors.New("boom")}

	require.NoError(t, s.Register(onDemand))
	require.NoError(t, s.Register(failing))
	assert.Equal(t, []string{"on-demand", "failing"}, s.Registered())

	ctx := context.Background()
	require.NoError(t, s.RunByName(ctx, "on-demand"))
	assert.EqualValues(t, 1, onDemand.runs.Load())

	assert.EqualError(t, s.RunByName(ctx, "failing"), "boom")
	assert.Error(t, s.RunByName(ctx, "missing"))
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	err := s.Register(&countingJob{name: "bad", schedule: "every now and then"})
	assert.Error(t, err)
}

func TestScheduler_RunsScheduledJobs(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.Register(job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
