package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool sends queued deliveries with a fixed number of goroutines.
type WorkerPool struct {
	queue       QueueReader
	mailer      Mailer
	workerCount int
	sendTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	// errorHandler is called when a send fails. If nil, errors are only logged.
	errorHandler func(d Delivery, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount defaults to 1 when zero or negative.
	WorkerCount int
	// SendTimeout bounds a single send. Zero means no timeout.
	SendTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		SendTimeout: 30 * time.Second,
	}
}

// NewWorkerPool creates a worker pool. It does nothing until Start.
func NewWorkerPool(queue QueueReader, mailer Mailer, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		mailer:      mailer,
		workerCount: workerCount,
		sendTimeout: config.SendTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "reminder_workers"),
	}
}

// SetErrorHandler sets a callback for failed sends. Call it before Start.
func (p *WorkerPool) SetErrorHandler(handler func(d Delivery, err error)) {
	p.errorHandler = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	p.logger.Info("starting reminder workers", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Drain waits until the workers have sent everything queued so far. The
// queue must be closed first, or Drain blocks until Stop is called.
func (p *WorkerPool) Drain() {
	p.wg.Wait()
}

// Stop cancels in-flight sends and waits for the workers to exit. Queued
// deliveries that were not picked up are dropped.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("reminder workers stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case d, ok := <-p.queue.Deliveries():
			if !ok {
				p.logger.Debug("delivery queue closed, stopping worker", "worker_id", id)
				return
			}
			p.process(d, id)
		}
	}
}

func (p *WorkerPool) process(d Delivery, workerID int) {
	log := p.logger.With(
		"delivery_id", d.ID,
		"task_id", d.TaskID,
		"worker_id", workerID,
	)

	ctx := p.ctx
	if p.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sendTimeout)
		defer cancel()
	}

	if err := p.mailer.Send(ctx, d.Message); err != nil {
		log.Error("reminder delivery failed", "error", err)
		if p.errorHandler != nil {
			p.errorHandler(d, err)
		}
		return
	}
	log.Debug("reminder delivered")
}
