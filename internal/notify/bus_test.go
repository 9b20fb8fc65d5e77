package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/planner/internal/notify"
)

func TestBus_DeliversToTenantSubscribers(t *testing.T) {
	bus := notify.NewBus()
	ch1, unsubscribe1 := bus.Subscribe("tenant-1")
	defer unsubscribe1()
	ch2, unsubscribe2 := bus.Subscribe("tenant-2")
	defer unsubscribe2()

	err := bus.PublishTasksChanged(context.Background(), notify.TasksChanged{ID: "e1", TenantID: "tenant-1"})
	require.NoError(t, err)

	select {
	case event := <-ch1:
		assert.Equal(t, "e1", event.ID)
	default:
		t.Fatal("expected event for tenant-1 subscriber")
	}

	select {
	case event := <-ch2:
		t.Fatalf("unexpected event for tenant-2: %+v", event)
	default:
	}
}

func TestBus_DropsWhenSubscriberIsFull(t *testing.T) {
	bus := notify.NewBus()
	ch, unsubscribe := bus.Subscribe("tenant-1")
	defer unsubscribe()

	for i := 0; i < 100; i++ {
		require.NoError(t, bus.PublishTasksChanged(context.Background(), notify.TasksChanged{TenantID: "tenant-1"}))
	}

	assert.Equal(t, 64, len(ch))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := notify.NewBus()
	ch, unsubscribe := bus.Subscribe("tenant-1")
	assert.Equal(t, 1, bus.Subscribers("tenant-1"))

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 0, bus.Subscribers("tenant-1"))
	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, bus.PublishTasksChanged(context.Background(), notify.TasksChanged{TenantID: "tenant-1"}))
}
