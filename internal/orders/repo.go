package orders

import (
	"context"
	"strings"

	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/store"
	"go.uber.org/zap"
)

type Repo struct {
	Store store.RecordStore
	Log   *zap.Logger
}

// Create inserts o and returns it as stored (with its assigned id).
func (r *Repo) Create(ctx context.Context, o Order) (Order, error) {
	o.ID = ""
	o.Status = o.Status.OrDefault()
	rec, err := r.Store.Insert(ctx, store.CollectionOrders, Encode(o))
	if err != nil {
		return Order{}, err
	}
	return Decode(rec)
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	rec, err := r.Store.GetByID(ctx, store.CollectionOrders, id)
	if err != nil {
		return Order{}, err
	}
	return Decode(rec)
}

// List returns every order newest first. Undecodable records are skipped.
func (r *Repo) List(ctx context.Context) ([]Order, error) {
	recs, err := r.Store.Select(ctx, store.CollectionOrders, store.Query{OrderBy: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(recs))
	for _, rec := range recs {
		o, err := Decode(rec)
		if err != nil {
			logging.OrNop(r.Log).Warn("skip order record", zap.String("id", rec.ID()), zap.Error(err))
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// SetStatus writes only the status field.
func (r *Repo) SetStatus(ctx context.Context, id string, s Status) (Order, error) {
	rec, err := r.Store.Update(ctx, store.CollectionOrders, id, store.Record{"status": string(s)})
	if err != nil {
		return Order{}, err
	}
	return Decode(rec)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, store.CollectionOrders, id)
}

// Filter selects orders for the operator list. status "all" or "" keeps
// every status; term matches the customer name (case-insensitive) or phone.
func Filter(list []Order, status, term string) []Order {
	status = strings.ToLower(strings.TrimSpace(status))
	term = strings.TrimSpace(term)
	lowered := strings.ToLower(term)
	var out []Order
	for _, o := range list {
		if status != "" && status != "all" && string(o.Status.OrDefault()) != status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(o.CustomerName), lowered) &&
			!strings.Contains(o.Phone, term) {
			continue
		}
		out = append(out, o)
	}
	return out
}
