package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-pizza-bot/internal/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes from a single goroutine so callers never wait on the broker.
// Topic is set per message.
type Producer struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}
}

func NewProducer(brokers []string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, buf)
}

func newProducer(w messageWriter, buf int) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{w: w, inbox: make(chan kafka.Message, buf), done: make(chan struct{})}
}

// Start runs the write loop until ctx is cancelled, then flushes what is queued
// and closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				if err := p.w.Close(); err != nil {
					logger.Warnw("kafka writer close failed", "error", err)
				}
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		logger.Errorw("kafka publish failed", "topic", m.Topic, "key", string(m.Key), "error", err)
	}
}

// Publish queues a message. A full queue or a stopped producer drops it and
// reports false.
func (p *Producer) Publish(topic string, key, value []byte, headers ...kafka.Header) bool {
	m := kafka.Message{Topic: topic, Key: key, Value: value, Time: time.Now(), Headers: headers}
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.inbox <- m:
		return true
	default:
		logger.Warnw("kafka queue full, event dropped", "topic", topic, "key", string(key))
		return false
	}
}

// WaitClosed blocks until the loop started by Start has flushed and exited.
func (p *Producer) WaitClosed() { <-p.done }
