package cart

import (
	"errors"
	"maps"
	"strings"
	"sync"

	"github.com/ariefcatur/go-pizza-bot/internal/userlock"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrInvalidLine  = errors.New("invalid cart line")
)

// Store keeps every user's cart in memory. Mutations for one user run under
// that user's lock; the map itself is guarded by mu.
type Store struct {
	locks userlock.Locks
	mu    sync.RWMutex
	carts map[int64][]Line
}

func NewStore() *Store {
	return &Store{carts: make(map[int64][]Line)}
}

// Add upserts a line. A line with the same key gets its quantity raised.
func (s *Store) Add(user int64, key, name string, unitPrice, qty int, details *Details) error {
	if strings.TrimSpace(key) == "" || qty < 1 || unitPrice < 0 {
		return ErrInvalidLine
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	lines := s.load(user)
	for i := range lines {
		if lines[i].Key == key {
			lines[i].Quantity += qty
			s.store(user, lines)
			return nil
		}
	}
	lines = append(lines, Line{
		Key:       key,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  qty,
		Details:   cloneDetails(details),
	})
	s.store(user, lines)
	return nil
}

func (s *Store) Increment(user int64, key string) (Line, error) {
	return s.update(user, key, func(l *Line) bool {
		l.Quantity++
		return true
	})
}

// Decrement lowers the quantity by one and drops the line at zero. The returned
// line has Quantity 0 when it was removed.
func (s *Store) Decrement(user int64, key string) (Line, error) {
	return s.update(user, key, func(l *Line) bool {
		l.Quantity--
		return l.Quantity > 0
	})
}

func (s *Store) Remove(user int64, key string) error {
	_, err := s.update(user, key, func(l *Line) bool {
		l.Quantity = 0
		return false
	})
	return err
}

func (s *Store) Clear(user int64) {
	unlock := s.locks.Lock(user)
	defer unlock()
	s.mu.Lock()
	delete(s.carts, user)
	s.mu.Unlock()
}

// Get returns a copy of the user's cart; callers may keep it.
func (s *Store) Get(user int64) Cart {
	unlock := s.locks.Lock(user)
	defer unlock()
	return Cart{Lines: s.load(user)}
}

func (s *Store) update(user int64, key string, fn func(*Line) bool) (Line, error) {
	unlock := s.locks.Lock(user)
	defer unlock()

	lines := s.load(user)
	for i := range lines {
		if lines[i].Key != key {
			continue
		}
		keep := fn(&lines[i])
		out := lines[i]
		if !keep {
			lines = append(lines[:i], lines[i+1:]...)
		}
		s.store(user, lines)
		return out, nil
	}
	return Line{}, ErrLineNotFound
}

// load copies the user's lines so callers can mutate freely.
func (s *Store) load(user int64) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.carts[user]
	out := make([]Line, len(src))
	for i, l := range src {
		l.Details = cloneDetails(l.Details)
		out[i] = l
	}
	return out
}

func (s *Store) store(user int64, lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(lines) == 0 {
		delete(s.carts, user)
		return
	}
	s.carts[user] = lines
}

func cloneDetails(d *Details) *Details {
	if d == nil {
		return nil
	}
	return &Details{Size: d.Size, Ingredients: maps.Clone(d.Ingredients)}
}
