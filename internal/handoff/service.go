// Package handoff consumes placed-order events and forwards each order to
// the shop's messaging channel.
package handoff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sheon-shop/storefront/internal/checkout"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/redisx"
	"go.uber.org/zap"
)

// Sender delivers a rendered handoff link.
type Sender interface {
	Send(ctx context.Context, orderID, link string) error
}

// LogSender writes the link to the log; the shopper's browser opens the
// same link directly, so this is the operator-side record.
type LogSender struct{ Log *zap.Logger }

func (s LogSender) Send(_ context.Context, orderID, link string) error {
	logging.OrNop(s.Log).Info("order handoff", zap.String("order_id", orderID), zap.String("link", link))
	return nil
}

type Service struct {
	Redis       *redis.Client
	Sender      Sender
	Phone       string
	ServiceName string
	Log         *zap.Logger
}

// HandleOrderPlaced is installed as the consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	log := logging.OrNop(s.Log)
	if t := kafkax.Header(m, "x-event-type"); t != "" && t != orders.EventOrderPlaced {
		return nil
	}

	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// A message that cannot be decoded will never succeed; skip it.
		log.Error("undecodable envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		log.Error("undecodable payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	link := checkout.URL(s.Phone, checkout.Message(p))
	if err := s.Sender.Send(ctx, p.OrderID, link); err != nil {
		return fmt.Errorf("send handoff for %s: %w", p.OrderID, err)
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}
