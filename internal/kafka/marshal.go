package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

func UnmarshalEnvelope(b []byte) (orders.Envelope, error) {
	var env orders.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return orders.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
