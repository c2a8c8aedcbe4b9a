// Package retention purges finished orders once they are old enough.
package retention

import (
	"context"
	"time"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/orders"
)

const (
	DefaultInterval = time.Hour
	DefaultMaxAge   = time.Hour
	tickTimeout     = 30 * time.Second
)

// Deleter is the part of the order store the sweep needs.
type Deleter interface {
	DeleteAged(ctx context.Context, statuses []orders.Status, olderThan time.Time) (int64, error)
}

type Sweeper struct {
	store    Deleter
	events   orders.EventSink
	Interval time.Duration
	MaxAge   time.Duration
	Now      func() time.Time
}

func New(store Deleter, events orders.EventSink) *Sweeper {
	if events == nil {
		events = orders.NopEvents{}
	}
	return &Sweeper{
		store:    store,
		events:   events,
		Interval: DefaultInterval,
		MaxAge:   DefaultMaxAge,
		Now:      time.Now,
	}
}

// RunOnce deletes terminal orders created before now minus MaxAge. Non-terminal
// orders are never touched, whatever their age.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.Now().UTC().Add(-s.MaxAge)
	n, err := s.store.DeleteAged(ctx, orders.TerminalStatuses, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Infow("old orders purged", "deleted", n, "older_than", cutoff)
		s.events.OrdersPurged(ctx, orders.OrdersPurgedPayload{Deleted: n, OlderThan: cutoff})
	}
	return n, nil
}

// Run sweeps every Interval until ctx is done. A tick already running is
// allowed to finish.
func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), tickTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		logger.Errorw("order cleanup failed", "error", err)
	}
}
