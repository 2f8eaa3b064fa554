package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by TryEnqueue when the buffer has no free slot.
var ErrQueueFull = errors.New("queue is full")

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// DrainTimeout bounds how long Stop keeps processing buffered jobs.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

// Queue is an in-memory job dispatcher backed by goroutines. Once the start
// context is cancelled or Stop is called, new jobs are rejected and jobs still
// buffered are drained before workers exit.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs     chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	closed   chan struct{}
	wg       sync.WaitGroup
	retries  sync.WaitGroup
	stopOnce sync.Once
	mu       sync.RWMutex
	started  bool
	stopping bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
		closed:  make(chan struct{}),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.wg.Add(1)
	go q.closeOnDone()
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop rejects new jobs, drains the buffer and waits for workers to exit.
func (q *Queue) Stop() {
	q.mu.RLock()
	started := q.started
	q.mu.RUnlock()
	if !started {
		return
	}
	q.stopOnce.Do(func() {
		q.cancel()
		q.retries.Wait()
		q.wg.Wait()
		q.logger.Info("queue stopped", zap.Int("dropped", len(q.jobs)))
	})
}

// TryEnqueue pushes a job without blocking. It fails once the queue is
// stopping, including when the start context has been cancelled.
func (q *Queue) TryEnqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if q.stopping {
		return fmt.Errorf("queue %s is stopping", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// closeOnDone flips the queue to stopping under the write lock, so every job
// accepted before cancellation is visible to drain.
func (q *Queue) closeOnDone() {
	defer q.wg.Done()
	<-q.ctx.Done()
	q.mu.Lock()
	q.stopping = true
	close(q.closed)
	q.mu.Unlock()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.closed:
			q.drain()
			return
		case job := <-q.jobs:
			if q.ctx.Err() != nil {
				q.runDetached(job)
				continue
			}
			q.run(q.ctx, job)
		}
	}
}

// drain runs whatever is still buffered under a fresh deadline; retries are not scheduled.
func (q *Queue) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.DrainTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.handleDraining(ctx, job)
		default:
			return
		}
	}
}

// runDetached handles a job dequeued after cancellation but before intake closed.
func (q *Queue) runDetached(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.DrainTimeout)
	defer cancel()
	q.handleDraining(ctx, job)
}

func (q *Queue) handleDraining(ctx context.Context, job Job) {
	if err := q.handler(ctx, job); err != nil {
		q.logger.Error("job failed during drain", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err))
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	err := q.handler(ctx, job)
	if err == nil {
		return
	}
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempts", job.Attempt), zap.Error(err))
		return
	}
	q.logger.Warn("job failed, retrying", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))

	q.retries.Add(1)
	go func(j Job) {
		defer q.retries.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			select {
			case q.jobs <- j:
			case <-q.ctx.Done():
			}
		}
	}(job)
}
