// Package messaging defines the event publishing abstraction used by the services.
package messaging

import (
	"context"
)

const (
	ProductsCreatedSubject = "products.created"
	ProductsUpdatedSubject = "products.updated"
	ProductsDeletedSubject = "products.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop is a Publisher that discards all events. Used when messaging is disabled.
type Noop struct{}

func (Noop) Publish(_ context.Context, _ Event) error { return nil }
