package orders

import (
	"context"
	"errors"
	"time"
)

// Item is a frozen copy of a cart line taken at checkout.
type Item struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID            int64
	UserID        int64
	Items         []Item
	Total         int
	Address       string
	Phone         string
	PaymentMethod string
	Status        Status
	CreatedAt     time.Time
}

// NewOrder is what checkout hands to the store; id, status and created_at are
// assigned there.
type NewOrder struct {
	UserID        int64
	Items         []Item
	Total         int
	Address       string
	Phone         string
	PaymentMethod string
}

var (
	ErrNotFound       = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
	ErrNotInitialized = errors.New("order store not initialized")
)

type Store interface {
	Create(ctx context.Context, o NewOrder) (int64, error)
	Get(ctx context.Context, id int64) (Order, error)
	// ListByUser and ListAll return newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Order, error)
	ListAll(ctx context.Context, limit int) ([]Order, error)
	// UpdateStatus moves an order from one status to another and returns the
	// owning user. ErrStatusConflict means the order was no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (int64, error)
	DeleteAged(ctx context.Context, statuses []Status, olderThan time.Time) (int64, error)
}
