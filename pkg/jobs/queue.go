package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned by Enqueue before Start and once Stop began.
	ErrNotRunning = errors.New("queue not running")
	// ErrQueueFull is returned when the buffer has no room. Enqueue never blocks.
	ErrQueueFull = errors.New("queue full")
)

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is multiplied by the attempt number.
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type queueState int

const (
	stateIdle queueState = iota
	stateRunning
	stateDraining
	stateStopped
)

// Queue runs jobs on a fixed pool of goroutines. Stop lets the workers finish
// what is already buffered, so callers can enqueue and move on.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs      chan Job
	retryStop chan struct{}

	mu      sync.Mutex
	state   queueState
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	retries sync.WaitGroup
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		name:      name,
		handler:   handler,
		cfg:       cfg,
		logger:    logger.With(zap.String("queue", name)),
		jobs:      make(chan Job, cfg.BufferSize),
		retryStop: make(chan struct{}),
	}
}

// Start launches the workers. The handler context keeps ctx's values but not
// its cancellation: workers run until Stop. Calling Start again is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateIdle {
		return
	}
	q.ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work()
	}
	q.state = stateRunning
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, abandons pending retries and waits for the workers to
// empty the buffer. When ctx ends first, in-flight handlers are cancelled and
// the remaining jobs are dropped.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.state != stateRunning {
		q.mu.Unlock()
		return nil
	}
	q.state = stateDraining
	close(q.retryStop)
	q.mu.Unlock()

	q.retries.Wait()
	// Enqueue only sends while running, so nothing writes to jobs any more.
	close(q.jobs)

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		q.cancel()
		<-done
		err = fmt.Errorf("queue %s: drain interrupted: %w", q.name, ctx.Err())
	}
	q.cancel()

	q.mu.Lock()
	q.state = stateStopped
	q.mu.Unlock()
	q.logger.Info("queue stopped", zap.Bool("drained", err == nil))
	return err
}

// Pending reports the number of buffered jobs.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Enqueue buffers a job, assigning an ID when missing.
func (q *Queue) Enqueue(job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateRunning {
		return fmt.Errorf("queue %s: %w", q.name, ErrNotRunning)
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) work() {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			if err := q.handler(q.ctx, job); err != nil {
				q.fail(job, err)
			}
		}
	}
}

func (q *Queue) fail(job Job, err error) {
	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err)}
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", fields...)
		return
	}

	q.mu.Lock()
	if q.state != stateRunning {
		q.mu.Unlock()
		q.logger.Warn("job failed while stopping, dropped", fields...)
		return
	}
	q.retries.Add(1)
	q.mu.Unlock()

	q.logger.Warn("job failed, retrying", fields...)
	go q.retry(job)
}

func (q *Queue) retry(job Job) {
	defer q.retries.Done()
	timer := time.NewTimer(q.cfg.RetryDelay * time.Duration(job.Attempt))
	defer timer.Stop()
	select {
	case <-q.retryStop:
		q.logger.Warn("retry abandoned", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return
	case <-timer.C:
	}
	if err := q.Enqueue(job); err != nil {
		q.logger.Error("failed to requeue job", zap.String("job_id", job.ID), zap.Error(err))
	}
}
