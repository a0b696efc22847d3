// Package inventory is the authoritative per-product stock store. Operators
// manage products through it; stock only moves down through Decrement.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/store"
	"go.uber.org/zap"
)

type Service struct {
	Store  store.RecordStore
	Locker Locker
	Log    *zap.Logger
	Now    func() time.Time
}

func (s *Service) log() *zap.Logger { return logging.OrNop(s.Log) }

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// List returns products newest first, optionally narrowed to one category.
// Records that fail to decode are skipped and logged.
func (s *Service) List(ctx context.Context, cat catalog.Category) ([]catalog.Product, error) {
	q := store.Query{OrderBy: "created_at", Desc: true}
	if cat != "" {
		q.Filter = map[string]any{"category": string(cat)}
	}
	recs, err := s.Store.Select(ctx, store.CollectionProducts, q)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(recs))
	for _, r := range recs {
		p, err := catalog.DecodeProduct(r)
		if err != nil {
			s.log().Warn("skip product record", zap.String("id", r.ID()), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (catalog.Product, error) {
	rec, err := s.Store.GetByID(ctx, store.CollectionProducts, id)
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.DecodeProduct(rec)
}

func (s *Service) Create(ctx context.Context, in catalog.Input) (catalog.Product, error) {
	rec, err := in.Validate()
	if err != nil {
		return catalog.Product{}, err
	}
	rec["created_at"] = s.now().Format(store.TimeLayout)
	saved, err := s.Store.Insert(ctx, store.CollectionProducts, rec)
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.DecodeProduct(saved)
}

// Update replaces the operator-editable fields. Stock is only written when
// the input carries it. The write takes the product lock so it cannot
// interleave with a concurrent decrement.
func (s *Service) Update(ctx context.Context, id string, in catalog.Input) (catalog.Product, error) {
	rec, err := in.Validate()
	if err != nil {
		return catalog.Product{}, err
	}
	if in.Stock == nil {
		delete(rec, "Stock")
	}
	release, err := s.Locker.Lock(ctx, ProductKey(id))
	if err != nil {
		return catalog.Product{}, apperr.Unavailable("lock product", err)
	}
	defer release()

	saved, err := s.Store.Update(ctx, store.CollectionProducts, id, rec)
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.DecodeProduct(saved)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, store.CollectionProducts, id)
}

// Decrement lowers a product's stock by qty, clamped at zero, and returns the
// new value. The read and the write happen under the product's lock.
func (s *Service) Decrement(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperr.Validation("decrement quantity must be positive, got %d", qty)
	}
	release, err := s.Locker.Lock(ctx, ProductKey(productID))
	if err != nil {
		return 0, apperr.Unavailable("lock product", err)
	}
	defer release()

	rec, err := s.Store.GetByID(ctx, store.CollectionProducts, productID)
	if err != nil {
		return 0, err
	}
	cur, ok := catalog.Int(rec["Stock"])
	if !ok || cur < 0 {
		cur = 0
	}
	next := max(0, cur-qty)
	if _, err := s.Store.Update(ctx, store.CollectionProducts, productID, store.Record{"Stock": next}); err != nil {
		return 0, fmt.Errorf("write stock for %s: %w", productID, err)
	}
	s.log().Debug("stock decremented",
		zap.String("product_id", productID), zap.Int("from", cur), zap.Int("to", next))
	return next, nil
}
