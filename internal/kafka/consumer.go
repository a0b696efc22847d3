package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
	"github.com/sheon-shop/storefront/internal/logging"
	"go.uber.org/zap"
)

// Handler must return nil only when the message is done and its offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// Reader is the subset of *kafka.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       Reader
	workers int
	log     *zap.Logger

	attempts  uint
	retryBase time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits
	})
	return NewConsumerWithReader(r, workers, log)
}

func NewConsumerWithReader(r Reader, workers int, log *zap.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: logging.OrNop(log), attempts: 3, retryBase: 200 * time.Millisecond}
}

// Start dispatches messages to a worker pool until ctx is done or the
// reader fails. A failing handler is retried with backoff; a message that
// still fails is logged and not committed. Offsets are per partition, so a
// later successful commit on the same partition moves past it: handlers
// that cannot afford a skip must be idempotent and park the message
// themselves.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*4)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				if err := c.handle(ctx, h, m); err != nil {
					c.log.Error("handler failed, message skipped",
						zap.Int("worker", id), zap.Int("partition", m.Partition),
						zap.Int64("offset", m.Offset), zap.Error(err))
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Warn("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
				}
			}
		}(i)
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBase
	b.MaxInterval = 10 * c.retryBase
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := h(ctx, m); err != nil {
			c.log.Warn("handler attempt failed", zap.Int64("offset", m.Offset), zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.attempts))
	return err
}
