// Package orderstest provides an in-memory orders.Store for tests.
package orderstest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

var ErrInjected = errors.New("injected store failure")

type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]orders.Order

	// Now stamps created_at; defaults to time.Now.
	Now func() time.Time
	// FailCreate, FailUpdate, FailDelete make the matching call return ErrInjected.
	FailCreate, FailUpdate, FailDelete bool
}

var _ orders.Store = (*Store)(nil)

func New() *Store {
	return &Store{rows: map[int64]orders.Order{}}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) Create(_ context.Context, o orders.NewOrder) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate {
		return 0, ErrInjected
	}
	s.nextID++
	s.rows[s.nextID] = orders.Order{
		ID:            s.nextID,
		UserID:        o.UserID,
		Items:         slices.Clone(o.Items),
		Total:         o.Total,
		Address:       o.Address,
		Phone:         o.Phone,
		PaymentMethod: o.PaymentMethod,
		Status:        orders.StatusNew,
		CreatedAt:     s.now(),
	}
	return s.nextID, nil
}

func (s *Store) Get(_ context.Context, id int64) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	o.Items = slices.Clone(o.Items)
	return o, nil
}

func (s *Store) ListByUser(_ context.Context, userID int64, limit int) ([]orders.Order, error) {
	return s.list(func(o orders.Order) bool { return o.UserID == userID }, limit), nil
}

func (s *Store) ListAll(_ context.Context, limit int) ([]orders.Order, error) {
	return s.list(func(orders.Order) bool { return true }, limit), nil
}

func (s *Store) list(keep func(orders.Order) bool, limit int) []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.Order
	for _, o := range s.rows {
		if keep(o) {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b orders.Order) int { return int(b.ID - a.ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) UpdateStatus(_ context.Context, id int64, from, to orders.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate {
		return 0, ErrInjected
	}
	o, ok := s.rows[id]
	if !ok {
		return 0, orders.ErrNotFound
	}
	if o.Status != from {
		return 0, fmt.Errorf("%w: order %d is %s", orders.ErrStatusConflict, id, o.Status)
	}
	o.Status = to
	s.rows[id] = o
	return o.UserID, nil
}

func (s *Store) DeleteAged(_ context.Context, statuses []orders.Status, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		return 0, ErrInjected
	}
	var n int64
	for id, o := range s.rows {
		if slices.Contains(statuses, o.Status) && o.CreatedAt.Before(olderThan) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

// Put stores o as is, replacing any order with the same id.
func (s *Store) Put(o orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[o.ID] = o
	if o.ID > s.nextID {
		s.nextID = o.ID
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
