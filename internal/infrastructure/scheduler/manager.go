// Package scheduler manages the background maintenance jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"keygate/internal/shared/logger"
)

// BatchJob is one scheduled maintenance pass. Execute returns the number
// of items it acted on.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// Manager owns the single gocron scheduler instance and the jobs
// registered on it.
type Manager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewManager(log logger.Interface) (*Manager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSessionSweep schedules the stale-session reclaim pass. Crashed
// clients stop heartbeating; this sweep frees the keys they held.
func (m *Manager) RegisterSessionSweep(job BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			m.runJob(ctx, "session-sweep", job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("session", "sweep"),
		gocron.WithName("session-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered session sweep", "interval", interval.String())
	return nil
}

// RegisterEmailRetry schedules the email retry queue pass.
func (m *Manager) RegisterEmailRetry(job BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runJob(ctx, "email-retry", job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("notification", "email-retry"),
		gocron.WithName("email-retry"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered email retry", "interval", interval.String())
	return nil
}

// RegisterOrderReconcile schedules the pending-order reconcile pass that
// recovers confirmations lost to missed webhooks.
func (m *Manager) RegisterOrderReconcile(job BatchJob, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runJob(ctx, "order-reconcile", job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("order", "reconcile"),
		gocron.WithName("order-reconcile"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered order reconcile", "interval", interval.String())
	return nil
}

func (m *Manager) runJob(ctx context.Context, name string, job BatchJob) {
	startTime := time.Now()

	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("scheduled job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("scheduled job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *Manager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "job_count", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (m *Manager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler stopped")
	return nil
}

// IsStarted reports whether the scheduler is running.
func (m *Manager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
