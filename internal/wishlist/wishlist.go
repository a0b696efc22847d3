package wishlist

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/sheon-shop/storefront/internal/logging"
	"go.uber.org/zap"
)

const StorageKey = "sheon_wishlist"

// Wishlist is a set of favorited products kept in insertion order.
type Wishlist struct {
	mu    sync.Mutex
	store kv.Store
	key   string
	items []catalog.Product
}

// Load behaves like cart.Load: bad or missing data yields an empty list.
func Load(ctx context.Context, store kv.Store, key string, log *zap.Logger) *Wishlist {
	w := &Wishlist{store: store, key: key}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logging.OrNop(log).Warn("wishlist load failed", zap.String("key", key), zap.Error(err))
		return w
	}
	if !ok || len(raw) == 0 {
		return w
	}
	var items []catalog.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		logging.OrNop(log).Warn("wishlist data malformed", zap.String("key", key), zap.Error(err))
		return w
	}
	for _, p := range items {
		if p.ID != "" {
			w.items = append(w.items, p)
		}
	}
	return w
}

// Toggle adds p if absent and removes it if present. Products without an
// id are ignored.
func (w *Wishlist) Toggle(ctx context.Context, p catalog.Product) error {
	if p.ID == "" {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, x := range w.items {
		if x.ID == p.ID {
			w.items = append(w.items[:i:i], w.items[i+1:]...)
			return w.save(ctx)
		}
	}
	w.items = append(w.items, p)
	return w.save(ctx)
}

func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, x := range w.items {
		if x.ID == productID {
			return true
		}
	}
	return false
}

func (w *Wishlist) Items() []catalog.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]catalog.Product(nil), w.items...)
}

func (w *Wishlist) save(ctx context.Context) error {
	items := w.items
	if items == nil {
		items = []catalog.Product{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return w.store.Set(ctx, w.key, b)
}
