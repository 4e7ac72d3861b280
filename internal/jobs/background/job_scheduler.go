package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"leadsync/internal/jobs"
)

var ErrUnknownJob = errors.New("unknown job")

// Poller is one dashboard refresh tick
type Poller interface {
	Poll(ctx context.Context) jobs.PollResult
}

// Sweeper evicts idle sessions from memory
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// Pruner removes expired lead exports from object storage
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Config holds job intervals
type Config struct {
	PollInterval  time.Duration
	SweepInterval time.Duration
	SessionIdle   time.Duration
	PruneInterval time.Duration
}

// JobScheduler runs the dashboard's background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	poller    Poller
	sweeper   Sweeper
	pruner    Pruner
	cfg       Config
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler. pruner may be nil when exports
// are disabled.
func NewJobScheduler(poller Poller, sweeper Sweeper, pruner Pruner, cfg Config, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}

	js := &JobScheduler{
		scheduler: scheduler,
		poller:    poller,
		sweeper:   sweeper,
		pruner:    pruner,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop stops the job scheduler and waits for running jobs
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() error {
	// Dashboard refresh, ticks never overlap
	pollJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cfg.PollInterval),
		gocron.NewTask(js.pollDashboards, context.Background()),
		gocron.WithName("dashboard-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["dashboard-poll"] = pollJob

	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cfg.SweepInterval),
		gocron.NewTask(js.sweepSessions),
		gocron.WithName("session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["session-sweep"] = sweepJob

	if js.pruner != nil {
		pruneJob, err := js.scheduler.NewJob(
			gocron.DurationJob(js.cfg.PruneInterval),
			gocron.NewTask(js.pruneExports, context.Background()),
			gocron.WithName("export-prune"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
		js.jobs["export-prune"] = pruneJob
	}

	js.logger.Debug("registered background jobs", zap.Int("count", len(js.jobs)))
	return nil
}

func (js *JobScheduler) pollDashboards(ctx context.Context) {
	js.poller.Poll(ctx)
}

func (js *JobScheduler) sweepSessions() {
	if js.cfg.SessionIdle <= 0 {
		return
	}
	js.sweeper.Sweep(js.cfg.SessionIdle)
}

func (js *JobScheduler) pruneExports(ctx context.Context) {
	if _, err := js.pruner.Prune(ctx); err != nil {
		js.logger.Warn("export prune failed", zap.Error(err))
	}
}

// RunNow triggers a job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	return job.RunNow()
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run,omitempty"`
	NextRun time.Time `json:"next_run,omitempty"`
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		s := JobStatus{Name: name}
		if last, err := job.LastRun(); err == nil {
			s.LastRun = last
		}
		if next, err := job.NextRun(); err == nil {
			s.NextRun = next
		}
		status = append(status, s)
	}
	return status
}
