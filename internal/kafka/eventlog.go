package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

// EventLogger is a Handler that writes one structured line per order event.
// Undecodable messages are logged and committed, retrying would not fix them.
func EventLogger(log *zap.Logger) Handler {
	return func(_ context.Context, m kafka.Message) error {
		fields, err := describe(m)
		if err != nil {
			log.Warn("skipping undecodable event", zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset), zap.Error(err))
			return nil
		}
		log.Info("order event", fields...)
		return nil
	}
}

func describe(m kafka.Message) ([]zap.Field, error) {
	env, err := UnmarshalEnvelope(m.Value)
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.String("topic", m.Topic),
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.Time("occurred_at", env.OccurredAt),
	}
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		fields = append(fields, zap.Int64("order_id", p.OrderID), zap.Int64("user_id", p.UserID),
			zap.Int("total", p.Total), zap.String("payment_method", p.PaymentMethod),
			zap.Int("items", len(p.Items)), zap.Bool("custom", p.Custom))
	case orders.EventStatusChanged:
		p, err := UnwrapPayload[orders.StatusChangedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		fields = append(fields, zap.Int64("order_id", p.OrderID), zap.Int64("user_id", p.UserID),
			zap.String("from", string(p.From)), zap.String("to", string(p.To)))
	case orders.EventOrdersPurged:
		p, err := UnwrapPayload[orders.OrdersPurgedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		fields = append(fields, zap.Int64("deleted", p.Deleted), zap.Time("older_than", p.OlderThan))
	default:
		return nil, fmt.Errorf("unknown event type %q", env.EventType)
	}
	return fields, nil
}
