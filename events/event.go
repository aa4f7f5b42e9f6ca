// Package events defines floor-plan domain events and the publishers that
// ship them to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// TablesTopic is the subject/queue every floor-plan event is published on.
	TablesTopic = "floorplan.tables"

	EventTableCreated       = "table.created"
	EventTableUpdated       = "table.updated"
	EventTableDeleted       = "table.deleted"
	EventTableMoved         = "table.moved"
	EventTableStatusChanged = "table.status.changed"
)

// TableEvent carries enough for consumers (POS, reservations) to react
// without calling back into the admin service.
type TableEvent struct {
	EventType      string    `json:"event_type"`
	TableID        string    `json:"table_id"`
	Number         int       `json:"number,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PositionX      float64   `json:"position_x,omitempty"`
	PositionY      float64   `json:"position_y,omitempty"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (e TableEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
	Close() error
}

// NoopPublisher drops every message. Used when EVENTS_DRIVER=none.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (NoopPublisher) Close() error { return nil }

// New builds the publisher for driver ("none", "amqp" or "nats").
func New(driver, amqpURL, natsURL string) (Publisher, error) {
	switch driver {
	case "amqp":
		p, err := NewAMQPPublisher(amqpURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "nats":
		p, err := NewNATSPublisher(natsURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return NoopPublisher{}, nil
	}
}
