package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner is what the Scheduler triggers. *Job satisfies it.
type Runner interface {
	Run(ctx context.Context) (RunResult, error)
}

// Scheduler runs a Runner once at Start and then every interval until stopped.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a Scheduler. A non-positive interval defaults to one hour.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger.With("component", "reminder_scheduler"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the ticker goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("starting reminder scheduler", "interval", s.interval.String())
	s.wg.Add(1)
	go s.loop()
}

// Stop cancels a run in progress and waits for the goroutine to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	s.run()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			s.run()
		}
	}
}

func (s *Scheduler) run() {
	if _, err := s.runner.Run(s.ctx); err != nil && s.ctx.Err() == nil {
		s.logger.Error("reminder run failed", "error", err)
	}
}
