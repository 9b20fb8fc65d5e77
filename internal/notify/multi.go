package notify

import (
	"context"
	"errors"
)

// Multi publishes every event to all of its publishers.
type Multi []Publisher

// PublishTasksChanged publishes to each publisher, even after a failure, and
// joins the errors.
func (m Multi) PublishTasksChanged(ctx context.Context, event TasksChanged) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishTasksChanged(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
