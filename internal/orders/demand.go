package orders

import "github.com/sheon-shop/storefront/internal/catalog"

// DemandEntry is the pending requirement for one product against its stock.
type DemandEntry struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Required  int    `json:"required"`
	InStock   int    `json:"in_stock"`
}

// Shortage reports whether pending demand exceeds stock.
func (d DemandEntry) Shortage() bool { return d.Required > d.InStock }

// AggregatePendingDemand sums line quantities across pending orders per
// product. Name and image come from the first line seen for a product;
// InStock is 0 for products missing from stock. Entries are returned in
// first-seen order. It is recomputed from scratch on every call.
func AggregatePendingDemand(orders []Order, stock []catalog.Product) []DemandEntry {
	onHand := make(map[string]int, len(stock))
	for _, p := range stock {
		onHand[p.ID] = p.Stock
	}

	idx := map[string]int{}
	var out []DemandEntry
	for _, o := range orders {
		if o.Status.OrDefault() != StatusPending {
			continue
		}
		for _, l := range o.Lines {
			if i, ok := idx[l.ProductID]; ok {
				out[i].Required += l.Qty()
				continue
			}
			idx[l.ProductID] = len(out)
			out = append(out, DemandEntry{
				ProductID: l.ProductID,
				Name:      l.Name,
				Image:     l.Image(),
				Required:  l.Qty(),
				InStock:   onHand[l.ProductID],
			})
		}
	}
	return out
}
