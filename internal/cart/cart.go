// Package cart is the shopper's cart. Every mutation is written through to a
// kv.Store; loading never fails and degrades to an empty cart.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/sheon-shop/storefront/internal/logging"
	"go.uber.org/zap"
)

const StorageKey = "sheon_cart"

// Line is a product snapshot taken when it was added, plus a quantity.
type Line struct {
	ProductID string           `json:"id"`
	Name      string           `json:"Name"`
	Price     catalog.Price    `json:"Price"`
	Category  catalog.Category `json:"category,omitempty"`
	Images    []string         `json:"ImgUrl,omitempty"`
	Quantity  int              `json:"quantity"`
}

func (l Line) Image() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// Qty is the effective quantity; stored lines without one count as 1.
func (l Line) Qty() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

func (l Line) Subtotal() float64 { return float64(l.Price) * float64(l.Qty()) }

type Cart struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	lines []Line
}

// Load rehydrates the cart stored under key. Missing or malformed data
// yields an empty cart.
func Load(ctx context.Context, store kv.Store, key string, log *zap.Logger) *Cart {
	c := &Cart{store: store, key: key}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logging.OrNop(log).Warn("cart load failed", zap.String("key", key), zap.Error(err))
		return c
	}
	if !ok || len(raw) == 0 {
		return c
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		logging.OrNop(log).Warn("cart data malformed", zap.String("key", key), zap.Error(err))
		return c
	}
	for _, l := range lines {
		if l.ProductID == "" {
			continue
		}
		l.Quantity = l.Qty()
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Add inserts p with quantity 1, or bumps the quantity of an existing line.
func (c *Cart) Add(ctx context.Context, p catalog.Product) error {
	if p.ID == "" {
		return apperr.Validation("product without id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return c.save(ctx)
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Images:    append([]string(nil), p.Images...),
		Quantity:  1,
	})
	return c.save(ctx)
}

func (c *Cart) Remove(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	c.lines = out
	return c.save(ctx)
}

// SetQuantity adds delta to a line's quantity, never going below 1.
// Unknown products are ignored.
func (c *Cart) SetQuantity(ctx context.Context, productID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = max(1, c.lines[i].Quantity+delta)
			return c.save(ctx)
		}
	}
	return nil
}

func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, l := range c.lines {
		sum += l.Subtotal()
	}
	return sum
}

// Clear empties the cart and drops its storage key.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	return c.store.Remove(ctx, c.key)
}

func (c *Cart) save(ctx context.Context) error {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key, b)
}
