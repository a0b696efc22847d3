package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
	"github.com/sheon-shop/storefront/internal/catalog"
	"github.com/sheon-shop/storefront/internal/checkout"
	"github.com/sheon-shop/storefront/internal/inventory"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/redisx"
	"github.com/sheon-shop/storefront/internal/wishlist"
	"go.uber.org/zap"
)

const HeaderSession = "X-Session-Id"

// ShopHandler serves the shopper surface. Carts and wishlists are keyed by
// the X-Session-Id header.
type ShopHandler struct {
	Inventory *inventory.Service
	Orders    *orders.Repo
	Checkout  *checkout.Service
	KV        kv.Store
	Status    *redisx.StatusCache // optional
	Log       *zap.Logger
}

type cartView struct {
	Items    []cart.Line `json:"items"`
	Subtotal float64     `json:"subtotal"`
}

type productReq struct {
	ProductID string `json:"product_id"`
}

type quantityReq struct {
	Delta int `json:"delta"`
}

func (h *ShopHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/orders/{id}", h.getOrder)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addToCart)
		r.Patch("/cart/items/{id}", h.updateQuantity)
		r.Delete("/cart/items/{id}", h.removeFromCart)
		r.Get("/wishlist", h.getWishlist)
		r.Post("/wishlist/toggle", h.toggleWishlist)
		r.Post("/checkout", h.checkout)
	})
}

func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(HeaderSession)) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing " + HeaderSession})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionKey(r *http.Request, base string) string {
	return base + ":" + strings.TrimSpace(r.Header.Get(HeaderSession))
}

func (h *ShopHandler) loadCart(ctx context.Context, r *http.Request) *cart.Cart {
	return cart.Load(ctx, h.KV, sessionKey(r, cart.StorageKey), h.Log)
}

func (h *ShopHandler) loadWishlist(ctx context.Context, r *http.Request) *wishlist.Wishlist {
	return wishlist.Load(ctx, h.KV, sessionKey(r, wishlist.StorageKey), h.Log)
}

func viewOf(c *cart.Cart) cartView {
	items := c.Lines()
	if items == nil {
		items = []cart.Line{}
	}
	return cartView{Items: items, Subtotal: c.Subtotal()}
}

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var cat catalog.Category
	if c := strings.ToUpper(r.URL.Query().Get("category")); c != "" && c != "ALL" {
		cat = catalog.Category(c)
		if !cat.Valid() {
			writeError(w, apperr.Validation("unknown category %q", c))
			return
		}
	}
	ps, err := h.Inventory.List(ctx, cat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ShopHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	p, err := h.Inventory.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ShopHandler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(h.loadCart(r.Context(), r)))
}

func (h *ShopHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Inventory.Get(ctx, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	c := h.loadCart(ctx, r)
	if err := c.Add(ctx, p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *ShopHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c := h.loadCart(r.Context(), r)
	if err := c.SetQuantity(r.Context(), chi.URLParam(r, "id"), req.Delta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *ShopHandler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	c := h.loadCart(r.Context(), r)
	if err := c.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

func (h *ShopHandler) getWishlist(w http.ResponseWriter, r *http.Request) {
	items := h.loadWishlist(r.Context(), r).Items()
	if items == nil {
		items = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Inventory.Get(ctx, req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	wl := h.loadWishlist(ctx, r)
	if err := wl.Toggle(ctx, p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product_id": p.ID, "in_wishlist": wl.Contains(p.ID)})
}

func (h *ShopHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeBody(r, &form); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Checkout.Place(ctx, h.loadCart(ctx, r), form, middleware.GetReqID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Status != nil {
		_ = h.Status.Put(ctx, res.Order.ID, string(res.Order.Status))
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ShopHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Status != nil {
		if s, ok := h.Status.Get(ctx, id); ok {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	o, err := h.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			err = apperr.ErrNotFound
		}
		writeError(w, err)
		return
	}
	if h.Status != nil {
		_ = h.Status.Put(ctx, o.ID, string(o.Status))
	}
	writeJSON(w, http.StatusOK, redisx.CachedStatus{ID: o.ID, Status: string(o.Status)})
}
