package scheduler

import (
	"context"
	"fmt"
	"time"

	"anoa.com/realorai/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs and RunByName.
	Name() string
	// Schedule is a cron spec such as "@every 1h". Empty means on-demand only.
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules. A job is skipped
// while a previous run of it is still going.
type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler() *Scheduler {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Log))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds the job and schedules it when it has a schedule.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		logger.Log.Info("job registered on-demand", zap.String("job", job.Name()))
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(s.ctx, job) }); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name(), err)
	}
	logger.Log.Info("job scheduled", zap.String("job", job.Name()), zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	log := logger.Log.With(zap.String("job", job.Name()))
	started := time.Now()

	if err := job.Run(ctx); err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(started)), zap.Error(err))
		return err
	}
	log.Info("job completed", zap.Duration("took", time.Since(started)))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Log.Warn("scheduler stop timed out")
	}
	logger.Log.Info("scheduler stopped")
}

// RunByName runs a job immediately, outside its schedule.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("job %q is not registered", name)
}

func (s *Scheduler) Registered() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
