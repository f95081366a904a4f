package dydx

import (
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// State bundles the live data structures one dydx session owns.
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

// buildSubscriptions returns the indexer's v4_orderbook/v4_trades/
// v4_candles/v4_markets/v4_subaccounts subscription frames for
// symbol. v4_subaccounts is keyed by the on-chain address rather than
// guarded by a handshake, so it rides the same connection and
// subscription batch as the public channels.
func buildSubscriptions(symbol, address string) []string {
	return []string{
		fmt.Sprintf(`{"type":"subscribe","channel":"v4_orderbook","id":"%s"}`, symbol),
		fmt.Sprintf(`{"type":"subscribe","channel":"v4_trades","id":"%s"}`, symbol),
		fmt.Sprintf(`{"type":"subscribe","channel":"v4_candles","id":"%s/1MIN"}`, symbol),
		`{"type":"subscribe","channel":"v4_markets"}`,
		fmt.Sprintf(`{"type":"subscribe","channel":"v4_subaccounts","id":"%s"}`, address),
	}
}

// NewPort assembles a venue.Port for dYdX v4 against the live state
// in st. address is the on-chain account address the private channel
// (v4_subaccounts) is keyed by; dYdX has no HMAC/listen-key
// handshake.
func NewPort(address string, st *State) venue.Port {
	publicTopics := dispatch.TopicMap{
		"v4_orderbook": newOrderbookHandler(st.Book),
		"v4_trades":    newTradesHandler(st.Trades),
		"v4_markets":   newTickerHandler(st.Ticker.Symbol, st.Ticker),
		"v4_candles":   newOhlcvHandler(st.Candles),
	}

	privateTopics := dispatch.TopicMap{
		"v4_subaccounts": newSubaccountsHandler(st.orders, newPositionHandler(st.Ticker.Symbol, st.Position)),
	}

	return venue.Port{
		Name:      "dydx",
		Endpoints: buildEndpoints(),
		Sign:      newSignFunc(address),
		ClassifyError: classifyError,
		BuildSubscriptions: func(symbol string) []string {
			return buildSubscriptions(symbol, address)
		},
		PublicTopics:  publicTopics,
		PrivateTopics: privateTopics,
		RequiresAuth:  false,
		RefreshTopics: map[string]string{
			"orderbook": "v4_orderbook",
			"trades":    "v4_trades",
			"ticker":    "v4_markets",
			"ohlcv":     "v4_candles",
		},
		RefreshEndpoints: venue.StandardRefreshEndpoints(),
	}
}
