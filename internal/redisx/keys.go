package redisx

import "time"

const (
	// Dedup of webhook updates: dedup:{service}:{update_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Telegram retries an unacknowledged update for up to a day.
	TTLDedup = 24 * time.Hour
)
