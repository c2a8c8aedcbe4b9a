package retention

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pizza-bot/internal/orders"
	"github.com/ariefcatur/go-pizza-bot/internal/orders/orderstest"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seed(store *orderstest.Store, id int64, status orders.Status, age time.Duration) {
	store.Put(orders.Order{ID: id, UserID: 1, Status: status, CreatedAt: now.Add(-age)})
}

func TestRunOnce_Eligibility(t *testing.T) {
	store := orderstest.New()
	seed(store, 1, orders.StatusDone, 2*time.Hour)
	seed(store, 2, orders.StatusCooking, 2*time.Hour)
	seed(store, 3, orders.StatusDone, 5*time.Minute)
	seed(store, 4, orders.StatusCancelled, 3*time.Hour)
	seed(store, 5, orders.StatusNew, 48*time.Hour)

	s := New(store, nil)
	s.Now = func() time.Time { return now }

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for id, kept := range map[int64]bool{1: false, 2: true, 3: true, 4: false, 5: true} {
		_, err := store.Get(context.Background(), id)
		if kept {
			assert.NoError(t, err, "order %d", id)
		} else {
			assert.ErrorIs(t, err, orders.ErrNotFound, "order %d", id)
		}
	}

	// nothing left to do
	n, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type purgeSpy struct {
	orders.NopEvents
	purged []orders.OrdersPurgedPayload
}

func (p *purgeSpy) OrdersPurged(_ context.Context, e orders.OrdersPurgedPayload) {
	p.purged = append(p.purged, e)
}

func TestRunOnce_EmitsEvent(t *testing.T) {
	store := orderstest.New()
	seed(store, 1, orders.StatusDone, 2*time.Hour)
	spy := &purgeSpy{}
	s := New(store, spy)
	s.Now = func() time.Time { return now }

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, spy.purged, 1)
	assert.Equal(t, int64(1), spy.purged[0].Deleted)
	assert.Equal(t, now.Add(-time.Hour), spy.purged[0].OlderThan)
}

type flakyDeleter struct {
	calls atomic.Int32
}

func (f *flakyDeleter) DeleteAged(context.Context, []orders.Status, time.Time) (int64, error) {
	if f.calls.Add(1) == 1 {
		return 0, orderstest.ErrInjected
	}
	return 0, nil
}

func TestRun_KeepsGoingAfterFailure(t *testing.T) {
	d := &flakyDeleter{}
	s := New(d, nil)
	s.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return d.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRunOnce_StoreError(t *testing.T) {
	store := orderstest.New()
	store.FailDelete = true
	_, err := New(store, nil).RunOnce(context.Background())
	assert.ErrorIs(t, err, orderstest.ErrInjected)
}

type blockingDeleter struct {
	entered chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
	calls   atomic.Int32
}

func (b *blockingDeleter) DeleteAged(ctx context.Context, _ []orders.Status, _ time.Time) (int64, error) {
	if b.calls.Add(1) > 1 {
		return 0, nil
	}
	close(b.entered)
	<-b.release
	b.ctxErr.Store(fmt.Sprint(ctx.Err()))
	return 3, nil
}

func TestRun_InFlightSweepFinishesOnShutdown(t *testing.T) {
	d := &blockingDeleter{entered: make(chan struct{}), release: make(chan struct{})}
	s := New(d, nil)
	s.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-d.entered:
	case <-time.After(time.Second):
		t.Fatal("sweep never started")
	}
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(d.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	// the sweep ran on a context that outlived the shutdown signal
	assert.Equal(t, "<nil>", d.ctxErr.Load())
}
