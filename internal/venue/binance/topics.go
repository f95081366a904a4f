package binance

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/shopspring/decimal"
)

// parseFloat decodes a venue's JSON-string numeric field via
// shopspring/decimal rather than fmt.Sscanf/strconv, so price/size
// strings with more precision than float64's %g round-trip survive
// the parse before the eventual float64 conversion at the model
// boundary. An unparseable string decodes to zero.
func parseFloat(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func parseLevels(rows [][2]string) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderbook.Level{Price: parseFloat(r[0]), Size: parseFloat(r[1])})
	}
	return out
}

// orderbookHandler applies Binance futures depth frames. Refresh
// frames carry lastUpdateId; incremental frames carry u and only the
// sides that actually changed.
type orderbookHandler struct {
	book *orderbook.Book
}

func newOrderbookHandler(book *orderbook.Book) *orderbookHandler {
	return &orderbookHandler{book: book}
}

func (h *orderbookHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		LastUpdateID int64       `json:"lastUpdateId"`
		Bids         [][2]string `json:"bids"`
		Asks         [][2]string `json:"asks"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "orderbook refresh")
	}
	h.book.Refresh(parseLevels(frame.Asks), parseLevels(frame.Bids), frame.LastUpdateID)
	return nil
}

func (h *orderbookHandler) Process(payload json.RawMessage) error {
	var frame struct {
		U int64       `json:"u"`
		B [][2]string `json:"b"`
		A [][2]string `json:"a"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "orderbook process")
	}
	if len(frame.B) > 0 {
		h.book.UpdateBids(parseLevels(frame.B), frame.U)
	}
	if len(frame.A) > 0 {
		h.book.UpdateAsks(parseLevels(frame.A), frame.U)
	}
	return nil
}

// tradesHandler derives trade side from the isBuyerMaker/"m" flag: a
// buyer-maker print means the taker sold, so canonical side is Sell.
type tradesHandler struct {
	trades *model.TradesRing
}

func newTradesHandler(trades *model.TradesRing) *tradesHandler {
	return &tradesHandler{trades: trades}
}

func sideFromMaker(isBuyerMaker bool) model.Side {
	if isBuyerMaker {
		return model.SideSell
	}
	return model.SideBuy
}

func (h *tradesHandler) Refresh(payload json.RawMessage) error {
	var rows []struct {
		Time         float64 `json:"time"`
		IsBuyerMaker bool    `json:"isBuyerMaker"`
		Price        string  `json:"price"`
		Qty          string  `json:"qty"`
	}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "trades refresh")
	}
	h.trades.Reset()
	for _, row := range rows {
		h.trades.Append(model.Trade{
			Timestamp: int64(row.Time),
			Side:      sideFromMaker(row.IsBuyerMaker),
			Price:     parseFloat(row.Price),
			Size:      parseFloat(row.Qty),
		})
	}
	return nil
}

func (h *tradesHandler) Process(payload json.RawMessage) error {
	var frame struct {
		T float64 `json:"T"`
		M bool    `json:"m"`
		P string  `json:"p"`
		Q string  `json:"q"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "trades process")
	}
	h.trades.Append(model.Trade{
		Timestamp: int64(frame.T),
		Side:      sideFromMaker(frame.M),
		Price:     parseFloat(frame.P),
		Size:      parseFloat(frame.Q),
	})
	return nil
}

var ordersOverwriteStatuses = map[string]bool{"NEW": true, "PARTIALLY_FILLED": true}
var ordersRemoveStatuses = map[string]bool{"CANCELED": true, "CANCELLED": true, "EXPIRED": true, "FILLED": true, "EXPIRED_IN_MATCH": true}

// ordersHandler maintains live order state keyed by venue order id
// from the user data stream's executionReport events.
type ordersHandler struct {
	symbol string
	mu     sync.Mutex
	live   model.Orders
}

func newOrdersHandler(symbol string) *ordersHandler {
	return &ordersHandler{symbol: symbol, live: model.NewOrders()}
}

func (h *ordersHandler) Snapshot() []model.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live.Slice()
}

func (h *ordersHandler) Refresh(payload json.RawMessage) error {
	var rows []struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"`
		OrigType      string `json:"origType"`
		TimeInForce   string `json:"timeInForce"`
		Price         string `json:"price"`
		OrigQty       string `json:"origQty"`
		ExecutedQty   string `json:"executedQty"`
		OrderID       int64  `json:"orderId"`
		ClientOrderID string `json:"clientOrderId"`
	}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "orders refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = model.NewOrders()
	for _, row := range rows {
		if row.Symbol != h.symbol {
			continue
		}
		order := model.NewOrder(
			h.symbol,
			sideConverter.ToNum(row.Side),
			orderTypeConverter.ToNum(row.OrigType),
			timeInForceConverter.ToNum(row.TimeInForce),
			parseFloat(row.OrigQty)-parseFloat(row.ExecutedQty),
			parseFloat(row.Price),
			fmt.Sprintf("%d", row.OrderID),
			row.ClientOrderID,
		)
		h.live.Upsert(order)
	}
	return nil
}

func (h *ordersHandler) Process(payload json.RawMessage) error {
	var frame struct {
		O struct {
			S string `json:"s"`
			X string `json:"X"`
			S2 string `json:"S"`
			O  string `json:"o"`
			F  string `json:"f"`
			P  string `json:"p"`
			Q  string `json:"q"`
			Z  string `json:"z"`
			I  int64  `json:"i"`
			C  string `json:"c"`
		} `json:"o"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "orders process")
	}
	o := frame.O
	if o.S != h.symbol {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case ordersOverwriteStatuses[o.X]:
		order := model.NewOrder(
			h.symbol,
			sideConverter.ToNum(o.S2),
			orderTypeConverter.ToNum(o.O),
			timeInForceConverter.ToNum(o.F),
			parseFloat(o.Q)-parseFloat(o.Z),
			parseFloat(o.P),
			fmt.Sprintf("%d", o.I),
			o.C,
		)
		h.live.Upsert(order)
	case ordersRemoveStatuses[o.X]:
		h.live.Remove(fmt.Sprintf("%d", o.I))
	}
	return nil
}

// positionHandler maintains one symbol's live Position from account
// update events, only applying changes whose event reason is ORDER.
type positionHandler struct {
	symbol   string
	mu       sync.Mutex
	position *model.Position
}

func newPositionHandler(symbol string, position *model.Position) *positionHandler {
	return &positionHandler{symbol: symbol, position: position}
}

func (h *positionHandler) Refresh(payload json.RawMessage) error {
	var rows []struct {
		Symbol           string `json:"symbol"`
		Side             string `json:"side"`
		EntryPrice       string `json:"entryPrice"`
		PositionAmt      string `json:"positionAmt"`
		UnRealizedProfit string `json:"unRealizedProfit"`
	}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "position refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range rows {
		if p.Symbol != h.symbol {
			continue
		}
		h.position.Symbol = h.symbol
		h.position.Update(
			positionDirectionConverter.ToNum(p.Side),
			parseFloat(p.EntryPrice),
			parseFloat(p.PositionAmt),
			parseFloat(p.UnRealizedProfit),
		)
	}
	return nil
}

func (h *positionHandler) Process(payload json.RawMessage) error {
	var frame struct {
		A struct {
			M string `json:"m"`
			P []struct {
				S  string `json:"s"`
				PS string `json:"ps"`
				EP string `json:"ep"`
				PA string `json:"pa"`
				UP string `json:"up"`
			} `json:"P"`
		} `json:"a"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "position process")
	}
	if frame.A.M != "ORDER" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range frame.A.P {
		if p.S != h.symbol {
			continue
		}
		h.position.Update(
			positionDirectionConverter.ToNum(p.PS),
			parseFloat(p.EP),
			parseFloat(p.PA),
			parseFloat(p.UP),
		)
	}
	return nil
}

// tickerHandler maintains the markPrice stream's funding/mark/index
// state for one symbol.
type tickerHandler struct {
	mu     sync.Mutex
	ticker *model.Ticker
}

func newTickerHandler(ticker *model.Ticker) *tickerHandler {
	return &tickerHandler{ticker: ticker}
}

type markPriceFrame struct {
	T float64 `json:"T"` // nextFundingTime
	R string  `json:"r"` // fundingRate
	P string  `json:"p"` // markPrice
	I string  `json:"i"` // indexPrice
}

func (h *tickerHandler) apply(frame markPriceFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticker.NextFundingTime = int64(frame.T)
	h.ticker.FundingRate = parseFloat(frame.R)
	h.ticker.MarkPrice = parseFloat(frame.P)
	h.ticker.IndexPrice = parseFloat(frame.I)
}

func (h *tickerHandler) Refresh(payload json.RawMessage) error {
	var frame markPriceFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "ticker refresh")
	}
	h.apply(frame)
	return nil
}

func (h *tickerHandler) Process(payload json.RawMessage) error {
	var frame markPriceFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "ticker process")
	}
	h.apply(frame)
	return nil
}

// ohlcvHandler maintains a CandlesRing from Binance's kline stream.
type ohlcvHandler struct {
	candles *model.CandlesRing
}

func newOhlcvHandler(candles *model.CandlesRing) *ohlcvHandler {
	return &ohlcvHandler{candles: candles}
}

func (h *ohlcvHandler) Refresh(payload json.RawMessage) error {
	var rows [][]interface{}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "ohlcv refresh")
	}
	h.candles.Reset()
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		h.candles.Append(model.Candle{
			Timestamp: int64(toFloat(row[0])),
			Open:      parseFloat(toString(row[1])),
			High:      parseFloat(toString(row[2])),
			Low:       parseFloat(toString(row[3])),
			Close:     parseFloat(toString(row[4])),
			Volume:    parseFloat(toString(row[5])),
		})
	}
	return nil
}

func (h *ohlcvHandler) Process(payload json.RawMessage) error {
	var frame struct {
		K struct {
			T int64  `json:"t"`
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
			V string `json:"v"`
		} `json:"k"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "binance", "ohlcv process")
	}
	h.candles.Append(model.Candle{
		Timestamp: frame.K.T,
		Open:      parseFloat(frame.K.O),
		High:      parseFloat(frame.K.H),
		Low:       parseFloat(frame.K.L),
		Close:     parseFloat(frame.K.C),
		Volume:    parseFloat(frame.K.V),
	})
	return nil
}

func toFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
