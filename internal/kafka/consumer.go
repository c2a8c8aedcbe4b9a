package kafka

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
)

const (
	retryBackoff    = 200 * time.Millisecond
	maxRetryBackoff = 10 * time.Second
)

// Handler returns nil only when the message is processed and its offset may be
// committed.
type Handler func(ctx context.Context, m kafka.Message) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer hands messages to a fixed set of workers. All messages of one
// partition go to the same worker, so they are handled and committed in
// offset order. A failing message is retried until it succeeds or the
// consumer stops; nothing behind it in its partition is committed meanwhile.
type Consumer struct {
	r       reader
	workers int
	backoff time.Duration
}

func NewConsumer(brokers []string, group string, topics []string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers)
}

func newConsumer(r reader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: retryBackoff}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if ctx.Err() != nil || !c.process(ctx, id, h, m) {
					return
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					logger.Warnw("commit failed", "topic", m.Topic, "partition", m.Partition,
						"offset", m.Offset, "error", err)
				}
			}
		}(i, lanes[i])
	}
	defer wg.Wait()
	defer func() {
		for _, l := range lanes {
			close(l)
		}
	}()

	for {
		// FetchMessage leaves the commit to the workers
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case lanes[c.lane(m)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) lane(m kafka.Message) int {
	key := m.Topic + "/" + strconv.Itoa(m.Partition)
	return int(xxhash.Sum64String(key) % uint64(c.workers))
}

// process runs h until it succeeds. It reports false if ctx ended first, in
// which case the message stays uncommitted and is redelivered later.
func (c *Consumer) process(ctx context.Context, worker int, h Handler, m kafka.Message) bool {
	wait := c.backoff
	for {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		logger.Warnw("event handler failed", "worker", worker, "topic", m.Topic,
			"partition", m.Partition, "offset", m.Offset, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait < maxRetryBackoff {
			wait = min(wait*2, maxRetryBackoff)
		}
	}
}
