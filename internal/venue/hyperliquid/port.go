package hyperliquid

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// State bundles the live data structures one hyperliquid session owns.
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

// buildSubscriptions returns Hyperliquid's subscribe frames for
// symbol's channels. webData2 and userHistoricalOrders are keyed by
// the account address rather than guarded by a handshake, so they
// ride the same connection and subscription batch as the public
// trades/l2Book/candle channels.
func buildSubscriptions(symbol, address string) []string {
	return []string{
		fmt.Sprintf(`{"method":"subscribe","subscription":{"type":"trades","coin":"%s"}}`, symbol),
		fmt.Sprintf(`{"method":"subscribe","subscription":{"type":"l2Book","coin":"%s"}}`, symbol),
		fmt.Sprintf(`{"method":"subscribe","subscription":{"type":"candle","coin":"%s","interval":"1m"}}`, symbol),
		fmt.Sprintf(`{"method":"subscribe","subscription":{"type":"webData2","user":"%s"}}`, address),
		fmt.Sprintf(`{"method":"subscribe","subscription":{"type":"userHistoricalOrders","user":"%s"}}`, address),
	}
}

// NewPort assembles a venue.Port for Hyperliquid against the live
// state in st. privateKey signs every exchange action as an EIP-712
// phantom-agent message; address is the account the
// webData2/userHistoricalOrders channels are keyed by.
func NewPort(privateKey *ecdsa.PrivateKey, address string, isMainnet bool, st *State) venue.Port {
	publicTopics := dispatch.TopicMap{
		"l2Book":               newOrderbookHandler(st.Book),
		"trades":               newTradesHandler(st.Trades),
		"candle":               newOhlcvHandler(st.Candles),
		"userHistoricalOrders": st.orders,
		"webData2":             newWeb2DataHandler(newTickerHandler(st.Ticker.Symbol, st.Ticker), newPositionHandler(st.Ticker.Symbol, st.Position)),
	}

	return venue.Port{
		Name:      "hyperliquid",
		Endpoints: buildEndpoints(),
		Sign:      newSignFunc(privateKey, isMainnet),
		ClassifyError: classifyError,
		BuildSubscriptions: func(symbol string) []string {
			return buildSubscriptions(symbol, address)
		},
		PublicTopics:  publicTopics,
		PrivateTopics: dispatch.TopicMap{},
		RequiresAuth:  false,
		RefreshTopics: map[string]string{
			"orderbook": "l2Book",
			"trades":    "trades",
			"ticker":    "webData2",
			"ohlcv":     "candle",
		},
		RefreshEndpoints: venue.StandardRefreshEndpoints(),
	}
}
