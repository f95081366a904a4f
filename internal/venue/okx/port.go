package okx

import (
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// State bundles the live data structures one okx session owns.
type State struct {
	Book     *orderbook.Book
	Trades   *model.TradesRing
	Candles  *model.CandlesRing
	Position *model.Position
	Ticker   *model.Ticker
	orders   *ordersHandler
}

// LiveOrders satisfies oms.LiveOrdersFunc.
func (s *State) LiveOrders() []model.Order {
	return s.orders.Snapshot()
}

// NewState allocates the live data structures for symbol, sized per
// cfg.
func NewState(symbol string, depth, tradesCapacity, candlesCapacity int) *State {
	return &State{
		Book:     orderbook.New(depth),
		Trades:   model.NewTradesRing(tradesCapacity),
		Candles:  model.NewCandlesRing(candlesCapacity),
		Position: &model.Position{Symbol: symbol},
		Ticker:   &model.Ticker{Symbol: symbol},
		orders:   newOrdersHandler(symbol),
	}
}

// buildPublicSubscriptions returns OKX's public-channel subscribe
// args for symbol.
func buildPublicSubscriptions(symbol string) []string {
	return []string{
		fmt.Sprintf(`{"op":"subscribe","args":[{"channel":"books","instId":"%s"},{"channel":"trades","instId":"%s"},{"channel":"tickers","instId":"%s"},{"channel":"candle1m","instId":"%s"}]}`, symbol, symbol, symbol, symbol),
	}
}

// buildPrivateSubscriptions returns OKX's private-channel subscribe
// args for symbol. Nothing calls it: the composition root builds the
// same frame inline for the private connection, which sends it after
// the login frame without waiting for the login ack.
func buildPrivateSubscriptions(symbol string) []string {
	return []string{
		fmt.Sprintf(`{"op":"subscribe","args":[{"channel":"orders","instType":"SWAP","instId":"%s"},{"channel":"positions","instType":"SWAP","instId":"%s"}]}`, symbol, symbol),
	}
}

// buildSubscriptions is the venue.Port-facing BuildSubscriptionsFunc;
// it covers the public channels only, since OKX runs the private feed
// over a separate authenticated connection whose subscribe frame the
// composition root builds inline.
func buildSubscriptions(symbol string) []string {
	return buildPublicSubscriptions(symbol)
}

// NewPort assembles a venue.Port for OKX USDT-margined perpetual
// swaps against the live state in st.
func NewPort(apiKey, apiSecret, passphrase string, st *State) venue.Port {
	publicTopics := dispatch.TopicMap{
		"books":    newOrderbookHandler(st.Book),
		"trades":   newTradesHandler(st.Trades),
		"tickers":  newTickerHandler(st.Ticker.Symbol, st.Ticker),
		"candle1m": newOhlcvHandler(st.Candles),
	}

	privateTopics := dispatch.TopicMap{
		"orders":    st.orders,
		"positions": newPositionHandler(st.Ticker.Symbol, st.Position),
	}

	return venue.Port{
		Name:               "okx",
		Endpoints:          buildEndpoints(),
		Sign:               newSignFunc(apiKey, apiSecret, passphrase),
		ClassifyError:      classifyError,
		BuildSubscriptions: buildSubscriptions,
		PublicTopics:       publicTopics,
		PrivateTopics:      privateTopics,
		RequiresAuth:       true,
		RefreshTopics: map[string]string{
			"orderbook": "books",
			"trades":    "trades",
			"ticker":    "tickers",
			"ohlcv":     "candle1m",
		},
		RefreshEndpoints: venue.StandardRefreshEndpoints(),
	}
}
