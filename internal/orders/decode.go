package orders

import (
	"time"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/store"
)

// Decode is the single seam between stored order records and Order. It
// applies the pending default, coerces loose numbers and rejects records
// it cannot make sense of.
func Decode(rec store.Record) (Order, error) {
	o := Order{
		ID:           rec.ID(),
		CustomerName: catalog.String(rec["customer_name"]),
		Phone:        catalog.String(rec["phone"]),
		Address:      catalog.String(rec["address"]),
	}
	if o.ID == "" {
		return Order{}, apperr.Validation("order record without id")
	}

	st := Status(catalog.String(rec["status"])).OrDefault()
	if !st.Valid() {
		return Order{}, apperr.Validation("order %s: unknown status %q", o.ID, st)
	}
	o.Status = st

	if v, ok := rec["total_price"]; ok && v != nil {
		total, ok := catalog.Float(v)
		if !ok {
			return Order{}, apperr.Validation("order %s: unreadable total %v", o.ID, v)
		}
		o.TotalPrice = total
	}

	if s := catalog.String(rec["created_at"]); s != "" {
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Order{}, apperr.Validation("order %s: bad created_at %q", o.ID, s)
		}
		o.CreatedAt = ts.UTC()
	}

	var items []any
	if v := rec["items"]; v != nil {
		var ok bool
		if items, ok = v.([]any); !ok {
			return Order{}, apperr.Validation("order %s: items is %T, not a list", o.ID, v)
		}
	}
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return Order{}, apperr.Validation("order %s: item %d is not an object", o.ID, i)
		}
		l, err := decodeLine(m)
		if err != nil {
			return Order{}, apperr.Validation("order %s: item %d: %v", o.ID, i, err)
		}
		o.Lines = append(o.Lines, l)
	}
	return o, nil
}

func decodeLine(m map[string]any) (cart.Line, error) {
	l := cart.Line{
		ProductID: catalog.String(m["id"]),
		Name:      catalog.String(m["Name"]),
		Category:  catalog.Category(catalog.String(m["category"])),
		Images:    catalog.Images(m["ImgUrl"]),
		Quantity:  1,
	}
	if l.ProductID == "" {
		return cart.Line{}, apperr.Validation("line without product id")
	}
	if v := m["Price"]; v != nil {
		p, ok := catalog.Float(v)
		if !ok {
			return cart.Line{}, apperr.Validation("unreadable price %v", v)
		}
		l.Price = catalog.Price(p)
	}
	if q, ok := catalog.Int(m["quantity"]); ok && q > 0 {
		l.Quantity = q
	}
	return l, nil
}

// Encode produces the stored shape of o. Lines become plain maps so every
// record store backend writes the same keys.
func Encode(o Order) store.Record {
	items := make([]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		m := map[string]any{
			"id":       l.ProductID,
			"Name":     l.Name,
			"Price":    float64(l.Price),
			"quantity": l.Qty(),
		}
		if l.Category != "" {
			m["category"] = string(l.Category)
		}
		if len(l.Images) > 0 {
			m["ImgUrl"] = append([]string(nil), l.Images...)
		}
		items = append(items, m)
	}
	rec := store.Record{
		"customer_name": o.CustomerName,
		"phone":         o.Phone,
		"address":       o.Address,
		"items":         items,
		"total_price":   o.TotalPrice,
		"status":        string(o.Status.OrDefault()),
		"created_at":    o.CreatedAt.UTC().Format(store.TimeLayout),
	}
	if o.ID != "" {
		rec["id"] = o.ID
	}
	return rec
}
