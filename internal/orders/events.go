package orders

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventStatusChanged = "OrderStatusChanged"
	EventOrdersPurged  = "OrdersPurged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID       int64  `json:"order_id"`
	UserID        int64  `json:"user_id"`
	Items         []Item `json:"items"`
	Total         int    `json:"total"`
	PaymentMethod string `json:"payment_method"`
	Custom        bool   `json:"custom"`
}

type StatusChangedPayload struct {
	OrderID int64  `json:"order_id"`
	UserID  int64  `json:"user_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

type OrdersPurgedPayload struct {
	Deleted   int64     `json:"deleted"`
	OlderThan time.Time `json:"older_than"`
}

// EventSink receives order lifecycle events. Implementations must not block the
// caller for long and must not fail the workflow; errors stay inside.
type EventSink interface {
	OrderCreated(ctx context.Context, p OrderCreatedPayload)
	StatusChanged(ctx context.Context, p StatusChangedPayload)
	OrdersPurged(ctx context.Context, p OrdersPurgedPayload)
}

// NopEvents drops every event.
type NopEvents struct{}

func (NopEvents) OrderCreated(context.Context, OrderCreatedPayload)   {}
func (NopEvents) StatusChanged(context.Context, StatusChangedPayload) {}
func (NopEvents) OrdersPurged(context.Context, OrdersPurgedPayload)   {}
