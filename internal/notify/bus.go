package notify

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 64

// Bus fans events out in-process to subscribers of the event's tenant.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan TasksChanged]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[chan TasksChanged]struct{}),
	}
}

// PublishTasksChanged delivers the event to the tenant's subscribers without blocking.
func (b *Bus) PublishTasksChanged(_ context.Context, event TasksChanged) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[event.TenantID] {
		select {
		case ch <- event:
		default:
			// subscriber is behind; drop to avoid blocking the publisher
			slog.Warn("dropping tasks changed event for slow subscriber",
				"tenant_id", event.TenantID,
				"event_id", event.ID,
			)
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving the tenant's events and a
// function that removes the subscription and closes the channel.
func (b *Bus) Subscribe(tenantID string) (<-chan TasksChanged, func()) {
	ch := make(chan TasksChanged, subscriberBuffer)

	b.mu.Lock()
	if b.subs[tenantID] == nil {
		b.subs[tenantID] = make(map[chan TasksChanged]struct{})
	}
	b.subs[tenantID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[tenantID], ch)
			if len(b.subs[tenantID]) == 0 {
				delete(b.subs, tenantID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of subscriptions for a tenant.
func (b *Bus) Subscribers(tenantID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[tenantID])
}
