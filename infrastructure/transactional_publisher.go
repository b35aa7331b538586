package infrastructure

import (
	"context"

	"longshot/domain/events"
	"longshot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// TransactionalEventPublisher holds events until Flush, which the unit of
// work calls only after its transaction commits
type TransactionalEventPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

var _ interfaces.TransactionalEventPublisher = (*TransactionalEventPublisher)(nil)

// NewTransactionalEventPublisher creates a new transactional publisher
func NewTransactionalEventPublisher(realPublisher interfaces.EventPublisher) *TransactionalEventPublisher {
	return &TransactionalEventPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *TransactionalEventPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events. A failed publish is logged and the
// remaining events still go out.
func (p *TransactionalEventPublisher) Flush(ctx context.Context) error {
	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard clears all pending events without publishing them
func (p *TransactionalEventPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	}
	p.pending = p.pending[:0]
}
