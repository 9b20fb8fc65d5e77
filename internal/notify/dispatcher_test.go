package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/planner/internal/notify"
)

// recordingPublisher captures published events and optionally fails.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.TasksChanged
	err    error
	block  bool
}

func (p *recordingPublisher) PublishTasksChanged(ctx context.Context, event notify.TasksChanged) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []notify.TasksChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.TasksChanged(nil), p.events...)
}

func TestDispatcher_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	d := notify.NewDispatcher(pub, time.Second)

	d.Dispatch(context.Background(), notify.TasksChanged{ID: "e1", TenantID: "t"})
	d.Wait()

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := notify.NewDispatcher(pub, time.Second)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), notify.TasksChanged{ID: "e1"})
		d.Wait()
	})
	assert.Len(t, pub.Events(), 1)
}

func TestDispatcher_SkipsCancelledContext(t *testing.T) {
	pub := &recordingPublisher{}
	d := notify.NewDispatcher(pub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Dispatch(ctx, notify.TasksChanged{ID: "e1"})
	d.Wait()

	assert.Empty(t, pub.Events())
}

func TestDispatcher_OutlivesRequestContext(t *testing.T) {
	pub := &recordingPublisher{}
	d := notify.NewDispatcher(pub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, notify.TasksChanged{ID: "e1"})
	cancel()
	d.Wait()

	assert.Len(t, pub.Events(), 1)
}

func TestDispatcher_TimeoutBoundsPublish(t *testing.T) {
	pub := &recordingPublisher{block: true}
	d := notify.NewDispatcher(pub, 20*time.Millisecond)

	start := time.Now()
	d.Dispatch(context.Background(), notify.TasksChanged{ID: "e1"})
	d.Wait()

	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_CloseAbortsInFlight(t *testing.T) {
	pub := &recordingPublisher{block: true}
	d := notify.NewDispatcher(pub, time.Minute)

	d.Dispatch(context.Background(), notify.TasksChanged{ID: "e1"})

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not abort the blocked publish")
	}
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("redis down")}
	other := &recordingPublisher{}

	err := notify.Multi{failing, ok, other}.PublishTasksChanged(context.Background(), notify.TasksChanged{ID: "e1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, ok.Events(), 1)
	assert.Len(t, other.Events(), 1)
}
