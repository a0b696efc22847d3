package orders

import (
	"context"
	"errors"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/inventory"
	"github.com/sheon-shop/storefront/internal/logging"
	"go.uber.org/zap"
)

// StockDecrementer lowers stock for one product, clamped at zero. It must
// serialize its own read-modify-write per product.
type StockDecrementer interface {
	Decrement(ctx context.Context, productID string, qty int) (int, error)
}

// Engine applies status transitions and reconciles stock when an order
// enters completed.
type Engine struct {
	Orders *Repo
	Stock  StockDecrementer
	Locker inventory.Locker
	Log    *zap.Logger
}

// Transition moves an order to target and returns the updated order with
// the status it held when the order lock was taken.
//
// Entering completed from any other status decrements stock once per line.
// Lines are applied independently; when some fail the status write stands,
// applied decrements are kept and a *apperr.PartialCompletionError is
// returned together with the updated order. Moving to the current status is
// a no-op. Leaving completed does not restore stock.
func (e *Engine) Transition(ctx context.Context, orderID string, target Status) (Order, Status, error) {
	if !target.Valid() {
		return Order{}, "", apperr.Validation("unknown status %q", target)
	}
	log := logging.OrNop(e.Log).With(zap.String("order_id", orderID), zap.String("target", string(target)))

	release, err := e.Locker.Lock(ctx, inventory.OrderKey(orderID))
	if err != nil {
		return Order{}, "", apperr.Unavailable("lock order", err)
	}
	defer release()

	cur, err := e.Orders.Get(ctx, orderID)
	if err != nil {
		return Order{}, "", err
	}
	prior := cur.Status.OrDefault()
	if prior == target {
		log.Debug("status unchanged")
		return cur, prior, nil
	}
	if !CanTransition(prior, target) {
		return Order{}, "", apperr.Validation("cannot move order %s from %s to %s", orderID, prior, target)
	}

	updated, err := e.Orders.SetStatus(ctx, orderID, target)
	if err != nil {
		log.Warn("status write failed", zap.Error(err))
		return Order{}, "", err
	}
	log.Info("order status changed", zap.String("from", string(prior)))

	if !ReconcilesStock(prior, target) {
		return updated, prior, nil
	}
	if failed := e.reconcile(ctx, log, updated); len(failed) > 0 {
		return updated, prior, &apperr.PartialCompletionError{OrderID: orderID, Failed: failed}
	}
	return updated, prior, nil
}

// reconcile decrements stock for every frozen line and returns the lines
// that did not apply. Products that no longer exist are skipped.
func (e *Engine) reconcile(ctx context.Context, log *zap.Logger, o Order) []apperr.LineFailure {
	var failed []apperr.LineFailure
	for _, l := range o.Lines {
		left, err := e.Stock.Decrement(ctx, l.ProductID, l.Qty())
		switch {
		case err == nil:
			log.Info("stock reconciled",
				zap.String("product_id", l.ProductID), zap.Int("qty", l.Qty()), zap.Int("left", left))
		case errors.Is(err, apperr.ErrNotFound):
			log.Warn("product gone, skipping decrement", zap.String("product_id", l.ProductID))
		default:
			log.Error("stock decrement failed",
				zap.String("product_id", l.ProductID), zap.Int("qty", l.Qty()), zap.Error(err))
			failed = append(failed, apperr.LineFailure{
				ProductID: l.ProductID,
				Quantity:  l.Qty(),
				Reason:    err.Error(),
			})
		}
	}
	return failed
}
