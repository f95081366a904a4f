package binance

import (
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// State bundles the live data structures one binance session owns.
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

// buildSubscriptions returns Binance futures' combined-stream
// subscribe request for symbol's public channels. symbol is
// expected to already be lowercased by the caller (Binance streams
// are case-sensitive and lowercase-only).
func buildSubscriptions(symbol string) []string {
	return []string{
		fmt.Sprintf(`{"method":"SUBSCRIBE","params":["%s@depth20@100ms","%s@aggTrade","%s@markPrice","%s@kline_1m"],"id":1}`,
			symbol, symbol, symbol, symbol),
	}
}

// NewPort assembles a venue.Port for Binance USD-M futures against
// the live state in st.
func NewPort(apiKey, apiSecret string, st *State) venue.Port {
	publicTopics := dispatch.TopicMap{
		st.Ticker.Symbol + "@depth20@100ms": newOrderbookHandler(st.Book),
		st.Ticker.Symbol + "@aggTrade":       newTradesHandler(st.Trades),
		st.Ticker.Symbol + "@markPrice":      newTickerHandler(st.Ticker),
		st.Ticker.Symbol + "@kline_1m":       newOhlcvHandler(st.Candles),
	}

	privateTopics := dispatch.TopicMap{
		"executionReport": st.orders,
		"ACCOUNT_UPDATE":  newPositionHandler(st.Ticker.Symbol, st.Position),
	}

	return venue.Port{
		Name:               "binance",
		Endpoints:          buildEndpoints(),
		Sign:               newSignFunc(apiKey, apiSecret),
		ClassifyError:      classifyError,
		BuildSubscriptions: buildSubscriptions,
		PublicTopics:       publicTopics,
		PrivateTopics:      privateTopics,
		RequiresAuth:       true,
		RefreshTopics: map[string]string{
			"orderbook": st.Ticker.Symbol + "@depth20@100ms",
			"trades":    st.Ticker.Symbol + "@aggTrade",
			"ticker":    st.Ticker.Symbol + "@markPrice",
			"ohlcv":     st.Ticker.Symbol + "@kline_1m",
		},
		RefreshEndpoints: venue.StandardRefreshEndpoints(),
	}
}
