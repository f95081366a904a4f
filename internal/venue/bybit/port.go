package bybit

import (
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// State bundles the live data structures one bybit session owns, so
// the OMS and REST/WS plumbing can be wired to the same backing
// objects the topic handlers mutate.
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

// buildSubscriptions returns Bybit's v5 subscribe args for symbol.
func buildSubscriptions(symbol string) []string {
	args := []string{
		fmt.Sprintf(`{"op":"subscribe","args":["orderbook.50.%s","publicTrade.%s","tickers.%s","kline.1.%s"]}`, symbol, symbol, symbol, symbol),
	}
	return args
}

// NewPort assembles a venue.Port for Bybit v5 linear perpetuals
// against the live state in st. recvWindowMs is the configured
// recv-window (spec §6); 0 falls back to defaultRecvWindowMs.
func NewPort(apiKey, apiSecret string, recvWindowMs int, st *State) venue.Port {
	publicTopics := dispatch.TopicMap{
		"orderbook.50." + st.Ticker.Symbol: newOrderbookHandler(st.Book),
		"publicTrade." + st.Ticker.Symbol:  newTradesHandler(st.Trades),
		"tickers." + st.Ticker.Symbol:      newTickerHandler(st.Ticker),
		"kline.1." + st.Ticker.Symbol:      newOhlcvHandler(st.Candles),
	}

	privateTopics := dispatch.TopicMap{
		"order":    st.orders,
		"position": newPositionHandler(st.Ticker.Symbol, st.Position),
	}

	return venue.Port{
		Name:               "bybit",
		Endpoints:          buildEndpoints(),
		Sign:               newSignFunc(apiKey, apiSecret, recvWindowMs),
		ClassifyError:      classifyError,
		BuildSubscriptions: buildSubscriptions,
		PublicTopics:       publicTopics,
		PrivateTopics:      privateTopics,
		RequiresAuth:       true,
		RefreshTopics: map[string]string{
			"orderbook": "orderbook.50." + st.Ticker.Symbol,
			"trades":    "publicTrade." + st.Ticker.Symbol,
			"ticker":    "tickers." + st.Ticker.Symbol,
			"ohlcv":     "kline.1." + st.Ticker.Symbol,
		},
		RefreshEndpoints: venue.StandardRefreshEndpoints(),
	}
}
