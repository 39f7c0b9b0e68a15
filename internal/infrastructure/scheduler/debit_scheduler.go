package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meterly/backend/internal/application/billing"
)

// DebitRunner executes one debit run over all eligible customers
type DebitRunner interface {
	RunOnce(ctx context.Context) (*billing.RunSummary, error)
}

// DebitSchedulerConfig holds configuration for the debit scheduler
type DebitSchedulerConfig struct {
	// Enabled determines if the scheduler starts with the process
	Enabled bool

	// Interval is the time between scheduled debit runs
	Interval time.Duration

	// RunTimeout is the maximum time a single run can take
	RunTimeout time.Duration
}

// DefaultDebitSchedulerConfig returns default configuration
func DefaultDebitSchedulerConfig() DebitSchedulerConfig {
	return DebitSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunTimeout: 10 * time.Minute,
	}
}

// Validate validates the configuration
func (c *DebitSchedulerConfig) Validate() error {
	if c.Interval < time.Second {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DebitSchedulerStatus is a point-in-time snapshot of the scheduler state.
// NextRun is approximate: it assumes the current tick completes on time.
type DebitSchedulerStatus struct {
	IsRunning bool          `json:"is_running"`
	Interval  time.Duration `json:"interval"`
	NextRun   *time.Time    `json:"next_run,omitempty"`
	LastRun   *time.Time    `json:"last_run,omitempty"`
}

// DebitScheduler fires recurring debit runs. Runs execute synchronously
// inside the tick loop, so a slow run delays the next tick rather than
// overlapping it; time.Ticker drops the missed ticks in between.
type DebitScheduler struct {
	runner DebitRunner
	logger *zap.Logger
	config DebitSchedulerConfig

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	nextRun   *time.Time
	lastRun   *time.Time
}

// NewDebitScheduler creates a new debit scheduler
func NewDebitScheduler(runner DebitRunner, logger *zap.Logger, config DebitSchedulerConfig) (*DebitScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DebitScheduler{
		runner: runner,
		logger: logger,
		config: config,
	}, nil
}

// Start starts the scheduler loop. It fires one run immediately and then
// every configured interval. Calling Start on a running scheduler is a no-op.
func (s *DebitScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		s.logger.Info("Debit scheduler already running")
		return nil
	}

	// The cancel handle and the loop's done channel are published under
	// the same lock that flips isRunning, so a concurrent Stop always
	// sees the handle matching the loop it is stopping.
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.isRunning = true
	s.cancel = cancel
	s.done = done

	go s.run(loopCtx, done)

	s.logger.Info("Debit scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)

	return nil
}

// Stop cancels the scheduler loop. An in-flight run is not aborted; Stop
// waits for it until the caller's context expires. Stopping a stopped
// scheduler is a no-op.
func (s *DebitScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.nextRun = nil
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		s.logger.Info("Debit scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Debit scheduler stop timed out")
		return ctx.Err()
	}
}

// Status returns the current scheduler state
func (s *DebitScheduler) Status() DebitSchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := DebitSchedulerStatus{
		IsRunning: s.isRunning,
		Interval:  s.config.Interval,
	}
	if s.nextRun != nil {
		next := *s.nextRun
		status.NextRun = &next
	}
	if s.lastRun != nil {
		last := *s.lastRun
		status.LastRun = &last
	}
	return status
}

// run is the scheduler loop: one immediate run, then one per tick
func (s *DebitScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.executeRun(ctx)

	for {
		s.setNextRun(time.Now().Add(s.config.Interval))

		select {
		case <-ctx.Done():
			s.logger.Debug("Debit scheduler loop stopping")
			return
		case <-ticker.C:
			s.executeRun(ctx)
		}
	}
}

// executeRun performs one debit run with the configured timeout. A failed
// run is logged and the ticker keeps going; the scheduler never dies from
// run errors.
func (s *DebitScheduler) executeRun(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startedAt := time.Now()
	summary, err := s.runner.RunOnce(runCtx)
	if err != nil {
		s.logger.Error("Scheduled debit run failed", zap.Error(err))
		return
	}

	s.setLastRun(startedAt)
	s.logger.Info("Scheduled debit run completed",
		zap.Int("total", summary.TotalCustomers),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
	)
}

func (s *DebitScheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		s.nextRun = &t
	}
}

func (s *DebitScheduler) setLastRun(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = &t
}
