package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/pkg/jobs"
)

// Dispatcher hands events to a retrying job queue. A nil *Dispatcher drops
// events silently.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// DispatcherConfig configures the background publishing queue.
type DispatcherConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
	// Observe is told the outcome of every publish attempt.
	Observe func(eventType string, err error)
}

// NewDispatcher builds a dispatcher that publishes through publisher.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(Event)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		err := publisher.Publish(ctx, event)
		if cfg.Observe != nil {
			cfg.Observe(event.Type, err)
		}
		return err
	}
	queue := jobs.NewQueue("events", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &Dispatcher{queue: queue, logger: logger}
}

// Start launches the publishing workers.
func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.queue.Start(ctx)
}

// Stop publishes the events still buffered, giving up when ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) {
	if d == nil {
		return
	}
	if err := d.queue.Stop(ctx); err != nil {
		d.logger.Warn("events left unpublished", zap.Error(err))
	}
}

// Dispatch enqueues an event for publishing.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	if err := d.queue.Enqueue(jobs.Job{ID: event.ID, Type: event.Type, Payload: event}); err != nil {
		d.logger.Warn("event dropped", zap.String("type", event.Type), zap.String("event_id", event.ID), zap.Error(err))
	}
}
