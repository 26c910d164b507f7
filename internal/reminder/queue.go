package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("delivery queue is closed")

// Delivery is one reminder email waiting to be sent.
type Delivery struct {
	ID      uuid.UUID
	TaskID  uuid.UUID
	Message Message
}

// QueueReader provides read-only access to queued deliveries.
type QueueReader interface {
	Deliveries() <-chan Delivery
}

// QueueWriter accepts deliveries for sending.
type QueueWriter interface {
	// Enqueue waits while the queue is full. It fails with ctx.Err() when
	// ctx ends first and with ErrQueueClosed once the queue is closed.
	Enqueue(ctx context.Context, d Delivery) error
}

// Queue is a bounded in-memory delivery queue. Nothing is persisted: a
// process exit drops whatever is still queued.
type Queue struct {
	// Enqueue holds the read lock while it waits for room, so Close cannot
	// close the channel under a pending send.
	mu         sync.RWMutex
	deliveries chan Delivery
	logger     *slog.Logger
	closed     bool
}

// NewQueue creates a queue holding at most size deliveries.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		deliveries: make(chan Delivery, size),
		logger:     logger,
	}
}

// Enqueue adds a delivery, waiting for a worker to make room when the
// queue is full.
func (q *Queue) Enqueue(ctx context.Context, d Delivery) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.deliveries <- d:
		q.logger.Debug("delivery enqueued",
			"delivery_id", d.ID,
			"task_id", d.TaskID,
			"queue_len", len(q.deliveries),
			"queue_cap", cap(q.deliveries))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting deliveries. It waits for pending Enqueue calls to
// finish. Queued deliveries can still be read.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.deliveries)
		q.logger.Info("delivery queue closed")
	}
}

// Deliveries returns the channel workers consume from.
func (q *Queue) Deliveries() <-chan Delivery {
	return q.deliveries
}
