// Package venue defines the capability set every exchange adapter
// implements. A Port is a value, not a type hierarchy: three functions
// (Sign, ClassifyError, BuildSubscriptions), an endpoint table, two
// topic maps and the refresh tables, assembled once per venue package
// and handed to
// the generic httpclient/wsclient/oms machinery. This replaces the
// interface-per-exchange-adapter pattern (one Go type satisfying a
// fat ExchangeAdapter interface) with closures built from each
// venue's own constants, which is what lets dydx/hyperliquid (no HMAC
// handshake, no listen key) and bybit/binance/okx (three different
// signing schemes) share one struct shape instead of three interface
// variants.
package venue

import (
	"context"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// SignedRequest is the material the httpclient needs to dispatch one
// signed REST call: the header set to attach, the body to send for
// venues that sign the body itself (Binance POST/PUT), and/or the
// already-encoded query string for GET/DELETE calls, which a venue's
// Sign function must return whenever it needs the signature to cover
// exactly the bytes that end up on the wire (Bybit, OKX) or whenever
// the endpoint simply needs its payload (e.g. symbol) attached as
// query parameters rather than silently dropped.
type SignedRequest struct {
	Headers map[string]string
	Body    []byte
	Query   string
}

// SignFunc produces the headers/body needed to authenticate method
// against path with the given JSON-able payload.
type SignFunc func(ctx context.Context, method, path string, payload map[string]interface{}) (SignedRequest, error)

// ClassifyErrorFunc turns a venue's raw REST/WS error response into a
// CoreError, deciding retryability along the way.
type ClassifyErrorFunc func(statusCode int, body []byte) *model.CoreError

// BuildSubscriptionsFunc returns the venue-specific subscription args
// to send once a websocket connection reaches the Subscribing state.
type BuildSubscriptionsFunc func(symbol string) []string

// StandardRefreshEndpoints is the getOrderbook/getTrades/getTicker/
// getOhlcv endpoint-name convention every venue package in this repo
// follows, so each NewPort can reuse it instead of repeating the
// literal map.
func StandardRefreshEndpoints() map[string]string {
	return map[string]string{
		"orderbook": "getOrderbook",
		"trades":    "getTrades",
		"ticker":    "getTicker",
		"ohlcv":     "getOhlcv",
	}
}

// Port is one venue's complete capability set.
type Port struct {
	Name                string
	Endpoints           model.EndpointTable
	Sign                SignFunc
	ClassifyError       ClassifyErrorFunc
	BuildSubscriptions  BuildSubscriptionsFunc
	PublicTopics        dispatch.TopicMap
	PrivateTopics       dispatch.TopicMap
	// RequiresAuth reports whether the private channel needs a
	// handshake at all (Binance listen-key, Bybit in-band op:auth) or
	// is keyed purely by account address (dYdX, Hyperliquid).
	RequiresAuth bool
	// RefreshTopics maps a logical role (orderbook, trades, ticker,
	// ohlcv) to the PublicTopics key whose handler owns that role, so
	// a venue-agnostic periodic REST resync can call Refresh on the
	// right handler without knowing the venue's wire topic names.
	RefreshTopics map[string]string
	// RefreshEndpoints maps the same logical roles to the
	// Endpoints table entry that fetches a fresh snapshot for them.
	RefreshEndpoints map[string]string
}
