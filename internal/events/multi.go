package events

import (
	"context"
	"errors"
)

// Publisher delivers one event
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Multi publishes every event to each of its publishers. One failing
// publisher does not stop delivery to the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
