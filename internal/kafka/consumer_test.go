package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed map[int][]int64
	closed    bool
}

func newFakeReader(partitions []int, perPartition int) *fakeReader {
	r := &fakeReader{committed: map[int][]int64{}}
	for off := 0; off < perPartition; off++ {
		for _, p := range partitions {
			r.queue = append(r.queue, kafka.Message{Topic: "orders.created", Partition: p, Offset: int64(off)})
		}
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed[m.Partition] = append(r.committed[m.Partition], m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits(partition int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed[partition]...)
}

type attempts struct {
	mu   sync.Mutex
	seen map[int][]int64
}

func (a *attempts) record(m kafka.Message) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen == nil {
		a.seen = map[int][]int64{}
	}
	a.seen[m.Partition] = append(a.seen[m.Partition], m.Offset)
	n := 0
	for _, off := range a.seen[m.Partition] {
		if off == m.Offset {
			n++
		}
	}
	return n
}

func (a *attempts) of(partition int) []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.seen[partition]...)
}

func startConsumer(t *testing.T, c *Consumer, h Handler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	t.Cleanup(cancel)
	return cancel, done
}

func stopped(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_PartitionOrderSurvivesRetry(t *testing.T) {
	r := newFakeReader([]int{0, 1, 2}, 5)
	c := newConsumer(r, 4)
	c.backoff = time.Millisecond

	var a attempts
	cancel, done := startConsumer(t, c, func(_ context.Context, m kafka.Message) error {
		if a.record(m) == 1 && m.Partition == 0 && m.Offset == 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		return len(r.commits(0))+len(r.commits(1))+len(r.commits(2)) == 15
	}, 2*time.Second, 2*time.Millisecond)
	cancel()
	stopped(t, done)

	for p := 0; p < 3; p++ {
		assert.Equal(t, []int64{0, 1, 2, 3, 4}, r.commits(p), "partition %d", p)
	}
	assert.Equal(t, []int64{0, 1, 2, 2, 3, 4}, a.of(0))
	assert.True(t, r.closed)
}

func TestConsumer_FailingMessageIsNeverCommitted(t *testing.T) {
	c := newConsumer(nil, 2)
	// a partition that shares the stuck worker would stall with it
	other := 1
	for c.lane(kafka.Message{Topic: "orders.created", Partition: other}) == c.lane(kafka.Message{Topic: "orders.created"}) {
		other++
	}
	r := newFakeReader([]int{0, other}, 3)
	c.r = r
	c.backoff = time.Millisecond

	var a attempts
	cancel, done := startConsumer(t, c, func(_ context.Context, m kafka.Message) error {
		a.record(m)
		if m.Partition == 0 && m.Offset == 1 {
			return errors.New("poison")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		return len(r.commits(other)) == 3 && len(a.of(0)) >= 4
	}, 2*time.Second, 2*time.Millisecond)
	cancel()
	stopped(t, done)

	assert.Equal(t, []int64{0}, r.commits(0))
	for _, off := range a.of(0) {
		assert.LessOrEqual(t, off, int64(1), "nothing behind the failing offset is handled")
	}
	assert.Equal(t, []int64{0, 1, 2}, r.commits(other))
}

func TestConsumer_LaneIsStablePerPartition(t *testing.T) {
	c := newConsumer(&fakeReader{}, 4)
	m := kafka.Message{Topic: "orders.created", Partition: 7}
	first := c.lane(m)
	for i := 0; i < 10; i++ {
		m.Offset = int64(i)
		assert.Equal(t, first, c.lane(m))
	}
	assert.Less(t, first, 4)
}
