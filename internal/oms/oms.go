// Package oms reconciles an intended ladder of orders against what is
// actually live on the venue, issuing the minimal set of create/
// cancel actions needed to converge. The matching rule keys off the
// trailing two characters of each client order id, which callers
// (the quote generator) encode as the ladder level index.
package oms

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ExchangeClient is the subset of a venue client the OMS needs to
// dispatch actions. Implemented by internal/httpclient's signed REST
// client over a venue.Port.
type ExchangeClient interface {
	CreateOrder(ctx context.Context, order model.Order) error
	CancelOrder(ctx context.Context, order model.Order) error
	CancelAllOrders(ctx context.Context, symbol string) error
}

// LiveOrdersFunc returns a snapshot of currently-live orders, owned
// by the session's order stream handler rather than the OMS itself.
type LiveOrdersFunc func() []model.Order

// DefaultSensitivity is the out-of-bounds buffer factor used when a
// SessionConfig does not override it.
const DefaultSensitivity = 0.10

// OMS is one symbol's order-management reconciler.
type OMS struct {
	symbol      string
	totalOrders int
	sensitivity float64

	client     ExchangeClient
	book       *orderbook.Book
	liveOrders LiveOrdersFunc
	logger     *zap.Logger
	pool       *ants.Pool

	mu              sync.Mutex
	hadPrevIntended bool
}

// New builds an OMS. poolSize bounds the number of concurrent
// create/cancel actions dispatched per Update call.
func New(symbol string, totalOrders int, sensitivity float64, client ExchangeClient, book *orderbook.Book, liveOrders LiveOrdersFunc, logger *zap.Logger, poolSize int) (*OMS, error) {
	if sensitivity == 0 {
		sensitivity = DefaultSensitivity
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build oms worker pool: %w", err)
	}
	return &OMS{
		symbol:      symbol,
		totalOrders: totalOrders,
		sensitivity: sensitivity,
		client:      client,
		book:        book,
		liveOrders:  liveOrders,
		logger:      logger,
		pool:        pool,
	}, nil
}

// Close releases the OMS's worker pool.
func (o *OMS) Close() {
	o.pool.Release()
}

func levelPrefix(clientOrderID string) string {
	if len(clientOrderID) <= 2 {
		return clientOrderID
	}
	return clientOrderID[:len(clientOrderID)-2]
}

// findMatchedOrder returns the first live order sharing new_order's
// side and level prefix, or false if none match.
func findMatchedOrder(live []model.Order, newOrder model.Order) (model.Order, bool) {
	target := levelPrefix(newOrder.ClientOrderID)
	for _, o := range live {
		if o.Side == newOrder.Side && levelPrefix(o.ClientOrderID) == target {
			return o, true
		}
	}
	return model.Order{}, false
}

// isOutOfBounds reports whether new_order's price has drifted outside
// old_order's acceptable band: buffer = |old.price - mid| *
// sensitivity; out of bounds if |new.price - old.price| > buffer.
func isOutOfBounds(oldOrder, newOrder model.Order, mid, sensitivity float64) bool {
	distanceFromMid := abs(oldOrder.Price - mid)
	buffer := distanceFromMid * sensitivity
	if newOrder.Price > oldOrder.Price+buffer {
		return true
	}
	if newOrder.Price < oldOrder.Price-buffer {
		return true
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// run submits fn to the worker pool, logging (not propagating) any
// failure so one bad action never stalls the rest of the batch.
// batchID correlates every action dispatched from the same Update/
// UpdateSimple call in the logs.
func (o *OMS) run(wg *sync.WaitGroup, batchID, action string, fn func() error) {
	wg.Add(1)
	err := o.pool.Submit(func() {
		defer wg.Done()
		if err := fn(); err != nil {
			o.logger.Error("oms action failed", zap.String("batch_id", batchID), zap.String("action", action), zap.Error(err))
		}
	})
	if err != nil {
		wg.Done()
		o.logger.Error("oms failed to submit action", zap.String("batch_id", batchID), zap.String("action", action), zap.Error(err))
	}
}

// Update reconciles newOrders against what is currently live:
//
//  1. If this is the first call (no prior intended batch), every
//     order in newOrders is created and nothing is cancelled.
//  2. If the live order count exceeds totalOrders, duplicate orders
//     sharing a (side, level) tag are cancelled, keeping the
//     first-seen order for each tag — this guards against duplicate
//     creates caused by network delay.
//  3. Each order in newOrders is then dispatched: MARKET orders are
//     always created; LIMIT orders are matched against a live order
//     sharing their level prefix, and replaced (cancel old + create
//     new) only if the new price has drifted out of bounds, otherwise
//     just created fresh.
//
// Unmatched live orders are left untouched; a separate CancelAll call
// handles full ladder teardown.
func (o *OMS) Update(ctx context.Context, newOrders []model.Order) error {
	batchID := uuid.New().String()

	o.mu.Lock()
	hadPrev := o.hadPrevIntended
	o.hadPrevIntended = len(newOrders) > 0
	o.mu.Unlock()

	var wg sync.WaitGroup

	if !hadPrev {
		for _, order := range newOrders {
			order := order
			o.run(&wg, batchID, "create", func() error { return o.client.CreateOrder(ctx, order) })
		}
		wg.Wait()
		return nil
	}

	live := o.liveOrders()

	if len(live) > o.totalOrders {
		seen := make(map[string]struct{}, len(live))
		for _, order := range live {
			tag := fmt.Sprintf("%d:%s", order.Side, levelPrefix(order.ClientOrderID))
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				continue
			}
			order := order
			o.run(&wg, batchID, "cancel_duplicate", func() error { return o.client.CancelOrder(ctx, order) })
		}
	}

	mid := o.book.Mid()

	for _, order := range newOrders {
		order := order
		switch order.OrderType {
		case model.OrderTypeMarket:
			o.run(&wg, batchID, "create", func() error { return o.client.CreateOrder(ctx, order) })

		case model.OrderTypeLimit:
			if matched, ok := findMatchedOrder(live, order); ok && isOutOfBounds(matched, order, mid, o.sensitivity) {
				matched := matched
				o.run(&wg, batchID, "cancel_replace", func() error { return o.client.CancelOrder(ctx, matched) })
				o.run(&wg, batchID, "create_replace", func() error { return o.client.CreateOrder(ctx, order) })
			} else {
				o.run(&wg, batchID, "create", func() error { return o.client.CreateOrder(ctx, order) })
			}

		default:
			o.logger.Error("oms: invalid order type for ladder update", zap.String("batch_id", batchID), zap.Int("order_type", int(order.OrderType)))
		}
	}

	wg.Wait()
	return nil
}

// UpdateSimple tears down the whole ladder and recreates it from
// scratch: a cancel-all plus one create per order, all dispatched
// concurrently. Used as a fallback when incremental reconciliation is
// not worth the bookkeeping (startup, forced resync).
func (o *OMS) UpdateSimple(ctx context.Context, newOrders []model.Order) error {
	batchID := uuid.New().String()
	var wg sync.WaitGroup

	o.run(&wg, batchID, "cancel_all", func() error { return o.client.CancelAllOrders(ctx, o.symbol) })
	for _, order := range newOrders {
		order := order
		o.run(&wg, batchID, "create", func() error { return o.client.CreateOrder(ctx, order) })
	}

	wg.Wait()
	return nil
}
