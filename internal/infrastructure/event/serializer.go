package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
)

// EventSerializer handles JSON serialization of domain events and recreates
// typed events from outbox payloads.
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type // eventType -> Go type
}

// NewEventSerializer creates a serializer with all domain events registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{
		registry: make(map[string]reflect.Type),
	}

	s.Register("BatchReceived", &procurement.BatchReceivedEvent{})
	s.Register("AssessmentSubmitted", &procurement.AssessmentSubmittedEvent{})
	s.Register("AssessmentPriceApproved", &procurement.AssessmentPriceApprovedEvent{})
	s.Register("AssessmentPriceRejected", &procurement.AssessmentPriceRejectedEvent{})
	s.Register("PaymentCompleted", &finance.PaymentCompletedEvent{})
	s.Register("AdvanceIssued", &finance.AdvanceIssuedEvent{})

	return s
}

// Register registers an event type for deserialization.
// The eventType must match what EventType() returns on the event.
func (s *EventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Serialize serializes a domain event to JSON bytes
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize deserializes JSON bytes to a typed domain event
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	eventPtr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized object does not implement DomainEvent")
	}

	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}
