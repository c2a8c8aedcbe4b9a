package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

type publisher interface {
	Publish(topic string, key, value []byte, headers ...kafka.Header) bool
}

// OrderEvents turns order lifecycle callbacks into enveloped Kafka messages.
type OrderEvents struct {
	p       publisher
	service string
	now     func() time.Time
}

var _ orders.EventSink = (*OrderEvents)(nil)

func NewOrderEvents(p publisher, service string) *OrderEvents {
	return &OrderEvents{p: p, service: service, now: time.Now}
}

func (e *OrderEvents) OrderCreated(_ context.Context, p orders.OrderCreatedPayload) {
	e.emit(orders.TopicOrderCreated, orders.EventOrderCreated, p.OrderID, p)
}

func (e *OrderEvents) StatusChanged(_ context.Context, p orders.StatusChangedPayload) {
	e.emit(orders.TopicStatusChanged, orders.EventStatusChanged, p.OrderID, p)
}

func (e *OrderEvents) OrdersPurged(_ context.Context, p orders.OrdersPurgedPayload) {
	e.emit(orders.TopicOrdersPurged, orders.EventOrdersPurged, 0, p)
}

func (e *OrderEvents) emit(topic, eventType string, orderID int64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorw("encode event payload failed", "event_type", eventType, "error", err)
		return
	}
	env := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   e.now().UTC(),
		Producer:     e.service,
		Payload:      raw,
	}
	if orderID != 0 {
		env.CorrelationID = strconv.FormatInt(orderID, 10)
	}
	val, err := json.Marshal(env)
	if err != nil {
		logger.Errorw("encode event failed", "event_type", eventType, "error", err)
		return
	}
	e.p.Publish(topic, orders.PartitionKey(orderID), val,
		kafka.Header{Key: "event_type", Value: []byte(eventType)},
		kafka.Header{Key: "event_id", Value: []byte(env.EventID)},
	)
}
