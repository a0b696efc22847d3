package orders

import (
	"encoding/json"
	"time"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPlacedPayload carries everything the handoff message needs.
type OrderPlacedPayload struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Lines        []cart.Line `json:"items"`
	TotalPrice   float64     `json:"total_price"`
	Lang         string      `json:"lang,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID     string               `json:"order_id"`
	From        Status               `json:"from"`
	To          Status               `json:"to"`
	FailedLines []apperr.LineFailure `json:"failed_lines,omitempty"`
}

func PlacedPayload(o Order, lang string) OrderPlacedPayload {
	return OrderPlacedPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		Lines:        o.Lines,
		TotalPrice:   o.TotalPrice,
		Lang:         lang,
	}
}
