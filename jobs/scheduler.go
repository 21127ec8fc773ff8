package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one scheduled task.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Schedule pairs a job with its interval.
type Schedule struct {
	Job      Job
	Interval time.Duration
	// RunOnStart fires the job once before the first tick.
	RunOnStart bool
}

// Scheduler runs every job on its own ticker goroutine. A job never
// overlaps itself: the next tick waits for the previous run.
type Scheduler struct {
	schedules []Schedule
	timeout   time.Duration
	logger    *zap.Logger
}

// NewScheduler bounds every run by timeout.
func NewScheduler(timeout time.Duration, logger *zap.Logger, schedules ...Schedule) *Scheduler {
	return &Scheduler{schedules: schedules, timeout: timeout, logger: logger}
}

// Start blocks until ctx is cancelled and all job loops have exited.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, sch := range s.schedules {
		wg.Add(1)
		go func(sch Schedule) {
			defer wg.Done()
			s.loop(ctx, sch)
		}(sch)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, sch Schedule) {
	s.logger.Info("Job scheduled", zap.String("job", sch.Job.Name()), zap.Duration("interval", sch.Interval))
	if sch.RunOnStart {
		s.runOnce(ctx, sch.Job)
	}

	ticker := time.NewTicker(sch.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, sch.Job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", zap.String("job", job.Name()), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	job.Run(runCtx)
	s.logger.Debug("Job finished", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
}
