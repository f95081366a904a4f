package httpclient

import (
	"context"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ExchangeClient adapts a signed REST Client to the oms.ExchangeClient
// interface, translating canonical Orders into the generic payload
// shape venue endpoints expect. Field naming differences between
// venues (symbol vs instId, side as int vs string) are resolved by the
// venue package's converters before the payload reaches here; this
// type only knows the four logical operation names.
type ExchangeClient struct {
	client *Client
}

// NewExchangeClient wraps client for order-management use.
func NewExchangeClient(client *Client) *ExchangeClient {
	return &ExchangeClient{client: client}
}

// CreateOrder dispatches a signed createOrder request.
func (e *ExchangeClient) CreateOrder(ctx context.Context, order model.Order) error {
	_, err := e.client.Do(ctx, "createOrder", order.ToMap())
	return err
}

// AmendOrder dispatches a signed amendOrder request, preserving the
// original order's client order id.
func (e *ExchangeClient) AmendOrder(ctx context.Context, oldOrder, newOrder model.Order) error {
	payload := newOrder.ToMap()
	payload["client_order_id"] = oldOrder.ClientOrderID
	_, err := e.client.Do(ctx, "amendOrder", payload)
	return err
}

// CancelOrder dispatches a signed cancelOrder request.
func (e *ExchangeClient) CancelOrder(ctx context.Context, order model.Order) error {
	_, err := e.client.Do(ctx, "cancelOrder", order.ToMap())
	return err
}

// CancelAllOrders dispatches a signed cancelAllOrders request for symbol.
func (e *ExchangeClient) CancelAllOrders(ctx context.Context, symbol string) error {
	_, err := e.client.Do(ctx, "cancelAllOrders", map[string]interface{}{"symbol": symbol})
	return err
}
