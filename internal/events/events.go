package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventVehicleStatusChanged = "vehicle_status_changed"
	EventVehicleCreated       = "vehicle_created"
	EventVehicleUpdated       = "vehicle_updated"
	EventVehicleDeleted       = "vehicle_deleted"
)

// EventTypes lists every event the service publishes.
var EventTypes = []string{
	EventReservationCreated,
	EventReservationCancelled,
	EventVehicleStatusChanged,
	EventVehicleCreated,
	EventVehicleUpdated,
	EventVehicleDeleted,
}

// ReservationEventPayload is the snapshot published after a reservation call succeeds upstream.
type ReservationEventPayload struct {
	ReservationID string  `json:"reservation_id"`
	VehicleID     string  `json:"vehicle_id,omitempty"`
	UserID        string  `json:"user_id,omitempty"`
	StartDate     string  `json:"start_date,omitempty"`
	EndDate       string  `json:"end_date,omitempty"`
	TotalPrice    float64 `json:"total_price,omitempty"`
}

type VehiclePayload struct {
	VehicleID string `json:"vehicle_id"`
	Name      string `json:"name,omitempty"`
}

type VehicleStatusPayload struct {
	VehicleID string `json:"vehicle_id"`
	Status    string `json:"status"`
}

type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

type EventHandler func(event *Event) error

// EventBus is an in-process pub/sub. Handlers run synchronously on the publisher's goroutine.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handler errors are logged, not returned.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event_type", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a no-op.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// AuditLogger returns a handler that writes every event it receives to the logger.
func AuditLogger(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		logger.Info().
			Str("event_type", event.Type).
			RawJSON("payload", event.Payload).
			Time("at", event.CreatedAt).
			Msg("audit")
		return nil
	}
}
