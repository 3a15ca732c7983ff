package background

import (
	"context"
	"log/slog"
	"sync"

	"libris/internal/logging"
)

// Task is a unit of deferred work. The context is the queue's lifetime
// context; tasks should return promptly once it is cancelled.
type Task func(ctx context.Context)

// Queue runs submitted tasks on a single worker goroutine. Submission never
// blocks the caller: when the buffer is full the oldest pending task is
// dropped to make room, and the drop is logged.
type Queue struct {
	logger *slog.Logger
	tasks  chan Task

	mu     sync.Mutex
	closed bool

	cancel context.CancelFunc
	done   chan struct{}

	dropped uint64
}

// NewQueue starts a queue with the given buffer depth. Depths below one are
// raised to one.
func NewQueue(depth int, logger *slog.Logger) *Queue {
	if depth < 1 {
		depth = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		logger: logger,
		tasks:  make(chan Task, depth),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go q.run(ctx)
	return q
}

// Submit enqueues a task for execution. It returns false when the queue is
// closed or the task was nil. A full buffer evicts the oldest pending task
// rather than blocking the caller.
func (q *Queue) Submit(task Task) bool {
	if task == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	for {
		select {
		case q.tasks <- task:
			return true
		default:
		}
		select {
		case <-q.tasks:
			q.dropped++
			q.logger.Warn("background queue full, dropping oldest task",
				logging.String(logging.FieldComponent, "background"),
				logging.Int64("dropped_total", int64(q.dropped)))
		default:
		}
	}
}

// Dropped reports how many pending tasks were evicted by overflow.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close stops accepting work, runs the tasks already queued, and waits for
// the worker to exit. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	<-q.done
	q.cancel()
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	for task := range q.tasks {
		task(ctx)
	}
}
