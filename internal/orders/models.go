package orders

import (
	"time"

	"github.com/sheon-shop/storefront/internal/cart"
)

// Order is created once at checkout. Lines are frozen copies of the cart
// lines; only Status changes afterwards.
type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Lines        []cart.Line `json:"items"`
	TotalPrice   float64     `json:"total_price"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Subtotal sums the frozen lines.
func (o Order) Subtotal() float64 {
	var sum float64
	for _, l := range o.Lines {
		sum += l.Subtotal()
	}
	return sum
}
