// Package checkout turns a shopper's cart into a pending order and hands
// it off to the shop's messaging channel.
package checkout

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/orders"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^01[0125][0-9]{8}$`)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Lang    string `json:"lang,omitempty"`
}

func (f Form) normalized() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Address: strings.TrimSpace(f.Address),
		Lang:    f.Lang,
	}
}

// Validate checks the delivery form. It runs before anything is written.
func (f Form) Validate() error {
	f = f.normalized()
	switch {
	case utf8.RuneCountInString(f.Name) < 3:
		return apperr.Validation("name must be at least 3 characters")
	case !phonePattern.MatchString(f.Phone):
		return apperr.Validation("phone %q is not a valid mobile number", f.Phone)
	case utf8.RuneCountInString(f.Address) < 5:
		return apperr.Validation("address must be at least 5 characters")
	}
	return nil
}

type Service struct {
	Orders       *orders.Repo
	Publisher    Publisher // optional
	ShippingFee  float64
	HandoffPhone string
	ServiceName  string
	Log          *zap.Logger
	Now          func() time.Time
}

type Result struct {
	Order      orders.Order `json:"order"`
	HandoffURL string       `json:"handoff_url"`
}

// Place creates a pending order from c. Once the order is stored, event
// publication and cart clearing are best effort and never undo it.
func (s *Service) Place(ctx context.Context, c *cart.Cart, f Form, traceID string) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	f = f.normalized()
	lines := c.Lines()
	if len(lines) == 0 {
		return Result{}, apperr.Validation("cart is empty")
	}
	log := logging.OrNop(s.Log)

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	o, err := s.Orders.Create(ctx, orders.Order{
		CustomerName: f.Name,
		Phone:        f.Phone,
		Address:      f.Address,
		Lines:        lines,
		TotalPrice:   c.Subtotal() + s.ShippingFee,
		Status:       orders.StatusPending,
		CreatedAt:    now().UTC(),
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("order placed", zap.String("order_id", o.ID), zap.Int("lines", len(o.Lines)), zap.Float64("total", o.TotalPrice))

	payload := orders.PlacedPayload(o, f.Lang)
	if err := s.publish(o.ID, traceID, payload); err != nil {
		log.Warn("order placed event not published", zap.String("order_id", o.ID), zap.Error(err))
	}
	if err := c.Clear(ctx); err != nil {
		log.Warn("cart not cleared", zap.String("order_id", o.ID), zap.Error(err))
	}
	return Result{Order: o, HandoffURL: URL(s.HandoffPhone, Message(payload))}, nil
}

func (s *Service) publish(orderID, traceID string, payload orders.OrderPlacedPayload) error {
	if s.Publisher == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       body,
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	s.Publisher.Publish(orders.PartitionKey(orderID), value, kafkax.EventHeaders(orders.EventOrderPlaced, 1)...)
	return nil
}
