package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"longshot/domain/events"
	"longshot/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const domainEventStream = "market_events"

// eventSubjects maps each event type to its NATS subject
var eventSubjects = map[events.EventType]string{
	events.EventTypeBetPlaced:      "market.bet.placed",
	events.EventTypeMarketCreated:  "market.lifecycle.created",
	events.EventTypeMarketResolved: "market.lifecycle.resolved",
	events.EventTypeBalanceChange:  "market.balance.changed",
}

// EventEnvelope wraps a serialized domain event with delivery metadata
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	natsClient *NATSClient
}

var _ interfaces.EventPublisher = (*NATSEventPublisher)(nil)

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{natsClient: natsClient}
}

// Publish serializes the event into an envelope and publishes it to its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	subject, ok := eventSubjects[event.Type()]
	if !ok {
		return fmt.Errorf("no subject mapped for event type %s", event.Type())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "longshot",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// EnsureEventStream ensures the market_events stream exists with all mapped subjects
func (p *NATSEventPublisher) EnsureEventStream() error {
	subjects := make([]string, 0, len(eventSubjects))
	for _, subject := range eventSubjects {
		subjects = append(subjects, subject)
	}
	return p.natsClient.ensureStream(domainEventStream, subjects)
}
