package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/checkout"
	"github.com/sheon-shop/storefront/internal/inventory"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/redisx"
	"go.uber.org/zap"
)

// AdminHandler serves the operator dashboard: orders, stock and the
// pending-demand report.
type AdminHandler struct {
	Orders      *orders.Repo
	Engine      *orders.Engine
	Inventory   *inventory.Service
	Status      *redisx.StatusCache // optional
	Publisher   checkout.Publisher  // optional, status-changed events
	ShippingFee float64
	Service     string
	Secret      string
	Log         *zap.Logger
}

type orderView struct {
	orders.Order
	Items        []lineView `json:"items"`
	Subtotal     float64    `json:"subtotal"`
	DisplayTotal float64    `json:"display_total"`
}

// lineView flags whether current stock still covers a frozen line.
type lineView struct {
	cart.Line
	InStock bool `json:"in_stock"`
}

type demandView struct {
	orders.DemandEntry
	Shortage bool `json:"shortage"`
}

type statusReq struct {
	Status string `json:"status"`
}

type transitionResp struct {
	Order       orders.Order         `json:"order"`
	Error       string               `json:"error,omitempty"`
	FailedLines []apperr.LineFailure `json:"failed_lines,omitempty"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireOperator(h.Secret))
		r.Get("/orders", h.listOrders)
		r.Patch("/orders/{id}/status", h.transition)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Get("/demand", h.demand)
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	products, err := h.Inventory.List(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	onHand := make(map[string]int, len(products))
	for _, p := range products {
		onHand[p.ID] = p.Stock
	}

	q := r.URL.Query()
	list = orders.Filter(list, q.Get("status"), q.Get("q"))
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		items := make([]lineView, 0, len(o.Lines))
		for _, l := range o.Lines {
			stock, ok := onHand[l.ProductID]
			items = append(items, lineView{Line: l, InStock: ok && stock >= l.Qty()})
		}
		sub := o.Subtotal()
		out = append(out, orderView{Order: o, Items: items, Subtotal: sub, DisplayTotal: sub + h.ShippingFee})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, from, err := h.Engine.Transition(ctx, chi.URLParam(r, "id"), target)
	var partial *apperr.PartialCompletionError
	switch {
	case errors.As(err, &partial):
		h.afterTransition(ctx, from, o, partial.Failed)
		writeJSON(w, http.StatusMultiStatus, transitionResp{Order: o, Error: err.Error(), FailedLines: partial.Failed})
	case err != nil:
		writeError(w, err)
	default:
		if from != o.Status {
			h.afterTransition(ctx, from, o, nil)
		}
		writeJSON(w, http.StatusOK, transitionResp{Order: o})
	}
}

func (h *AdminHandler) afterTransition(ctx context.Context, from orders.Status, o orders.Order, failed []apperr.LineFailure) {
	log := logging.OrNop(h.Log)
	if h.Status != nil {
		if err := h.Status.Put(ctx, o.ID, string(o.Status)); err != nil {
			log.Warn("status cache update failed", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	if h.Publisher == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: o.ID, From: from, To: o.Status, FailedLines: failed,
		}),
	}
	h.Publisher.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkax.EventHeaders(orders.EventOrderStatusChanged, 1)...)
}

func (h *AdminHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	id := chi.URLParam(r, "id")
	if err := h.Orders.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	if h.Status != nil {
		_ = h.Status.Drop(ctx, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) demand(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Orders.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	stock, err := h.Inventory.List(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	entries := orders.AggregatePendingDemand(list, stock)
	out := make([]demandView, 0, len(entries))
	for _, e := range entries {
		out = append(out, demandView{DemandEntry: e, Shortage: e.Shortage()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var cat catalog.Category
	if c := strings.ToUpper(r.URL.Query().Get("category")); c != "" && c != "ALL" {
		cat = catalog.Category(c)
	}
	ps, err := h.Inventory.List(ctx, cat)
	if err != nil {
		writeError(w, err)
		return
	}
	if term := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); term != "" {
		kept := ps[:0]
		for _, p := range ps {
			if strings.Contains(strings.ToLower(p.Name), term) {
				kept = append(kept, p)
			}
		}
		ps = kept
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	p, err := h.Inventory.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	p, err := h.Inventory.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Inventory.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
