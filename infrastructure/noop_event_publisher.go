package infrastructure

import (
	"longshot/domain/events"
	"longshot/domain/interfaces"
)

// NoopEventPublisher drops events. Used when NATS is not configured and in tests.
type NoopEventPublisher struct{}

var _ interfaces.EventPublisher = (*NoopEventPublisher)(nil)

// NewNoopEventPublisher creates a publisher that discards all events
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish discards the event
func (p *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
