package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/planner/internal/metrics"
)

// DefaultTimeout bounds a single asynchronous publish.
const DefaultTimeout = 5 * time.Second

// Dispatcher publishes events asynchronously after the change they describe
// was committed. Failures are logged and counted, never returned.
type Dispatcher struct {
	publisher Publisher
	timeout   time.Duration

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A non-positive timeout uses DefaultTimeout.
func NewDispatcher(publisher Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		publisher: publisher,
		timeout:   timeout,
		base:      base,
		cancel:    cancel,
	}
}

// Dispatch starts publishing the event and returns immediately. If ctx is
// already cancelled the event is skipped. Once started, publishing outlives
// ctx and is bounded by the dispatcher timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, event TasksChanged) {
	if err := ctx.Err(); err != nil {
		metrics.Notifications.WithLabelValues("skipped").Inc()
		slog.Warn("tasks changed notification skipped",
			"event_id", event.ID,
			"tenant_id", event.TenantID,
			"error", err,
		)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		pubCtx, cancel := context.WithTimeout(d.base, d.timeout)
		defer cancel()

		if err := d.publisher.PublishTasksChanged(pubCtx, event); err != nil {
			metrics.Notifications.WithLabelValues("failed").Inc()
			slog.Error("failed to publish tasks changed notification",
				"event_id", event.ID,
				"tenant_id", event.TenantID,
				"task_ids", event.TaskIDs,
				"error", err,
			)
			return
		}

		metrics.Notifications.WithLabelValues("sent").Inc()
		slog.Debug("tasks changed notification published",
			"event_id", event.ID,
			"tenant_id", event.TenantID,
			"task_count", len(event.TaskIDs),
		)
	}()
}

// Wait blocks until all started publishes have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close aborts in-flight publishes and waits for them to return.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
