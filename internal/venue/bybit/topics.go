package bybit

import (
	"encoding/json"
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

// orderbookHandler applies Bybit v5 orderbook frames to a Book. A
// private-stream-style seq_id of 1, or an explicit "snapshot" type,
// is treated as a full refresh; everything else is an incremental
// delta applied only to the side that actually changed.
type orderbookHandler struct {
	book *orderbook.Book
}

func newOrderbookHandler(book *orderbook.Book) *orderbookHandler {
	return &orderbookHandler{book: book}
}

type obFrame struct {
	Type string `json:"type"`
	Data struct {
		U int64       `json:"u"`
		B [][2]string `json:"b"`
		A [][2]string `json:"a"`
	} `json:"data"`
	Result *struct {
		U int64       `json:"u"`
		B [][2]string `json:"b"`
		A [][2]string `json:"a"`
	} `json:"result"`
}

func parseLevels(rows [][2]string) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderbook.Level{Price: parseFloat(r[0]), Size: parseFloat(r[1])})
	}
	return out
}

func (h *orderbookHandler) Refresh(payload json.RawMessage) error {
	var frame obFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "orderbook refresh")
	}
	if frame.Result == nil {
		return model.New(model.ErrSchema, "bybit", "orderbook refresh missing result")
	}
	h.book.Refresh(parseLevels(frame.Result.A), parseLevels(frame.Result.B), frame.Result.U)
	return nil
}

func (h *orderbookHandler) Process(payload json.RawMessage) error {
	var frame obFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "orderbook process")
	}

	seqID := frame.Data.U
	bids := parseLevels(frame.Data.B)
	asks := parseLevels(frame.Data.A)

	if seqID == 1 || frame.Type == "snapshot" {
		h.book.Refresh(asks, bids, seqID)
		return nil
	}

	if frame.Type == "delta" {
		if len(bids) != 0 {
			h.book.UpdateBids(bids, seqID)
		}
		if len(asks) != 0 {
			h.book.UpdateAsks(asks, seqID)
		}
	}
	return nil
}

// tradesHandler appends Bybit print frames to a TradesRing.
type tradesHandler struct {
	trades *model.TradesRing
}

func newTradesHandler(trades *model.TradesRing) *tradesHandler {
	return &tradesHandler{trades: trades}
}

type tradeRow struct {
	Time  string `json:"time"`
	T     string `json:"T"`
	Side  string `json:"side"`
	S     string `json:"S"`
	Price string `json:"price"`
	P     string `json:"p"`
	Size  string `json:"size"`
	V     string `json:"v"`
}

type tradesRefreshFrame struct {
	Result struct {
		List []tradeRow `json:"list"`
	} `json:"result"`
}

type tradesProcessFrame struct {
	Data []tradeRow `json:"data"`
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (h *tradesHandler) Refresh(payload json.RawMessage) error {
	var frame tradesRefreshFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "trades refresh")
	}
	h.trades.Reset()
	for _, row := range frame.Result.List {
		h.trades.Append(model.Trade{
			Timestamp: int64(parseFloat(coalesce(row.Time, row.T))),
			Side:      sideConverter.ToNum(coalesce(row.Side, row.S)),
			Price:     parseFloat(coalesce(row.Price, row.P)),
			Size:      parseFloat(coalesce(row.Size, row.V)),
		})
	}
	return nil
}

func (h *tradesHandler) Process(payload json.RawMessage) error {
	var frame tradesProcessFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "trades process")
	}
	for _, row := range frame.Data {
		h.trades.Append(model.Trade{
			Timestamp: int64(parseFloat(coalesce(row.T, row.Time))),
			Side:      sideConverter.ToNum(coalesce(row.S, row.Side)),
			Price:     parseFloat(coalesce(row.P, row.Price)),
			Size:      parseFloat(coalesce(row.V, row.Size)),
		})
	}
	return nil
}

// ordersOverwriteStatuses trigger an upsert; ordersRemoveStatuses
// trigger removal from live state.
var ordersOverwriteStatuses = map[string]bool{"Created": true, "New": true, "PartiallyFilled": true}
var ordersRemoveStatuses = map[string]bool{"Rejected": true, "Filled": true, "Cancelled": true}

// ordersHandler maintains live order state keyed by venue order id.
type ordersHandler struct {
	symbol string
	mu     sync.Mutex
	live   model.Orders
}

func newOrdersHandler(symbol string) *ordersHandler {
	return &ordersHandler{symbol: symbol, live: model.NewOrders()}
}

// Snapshot returns the live orders as a slice, safe for the OMS's
// LiveOrdersFunc.
func (h *ordersHandler) Snapshot() []model.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live.Slice()
}

type orderRow struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	OrigType      string `json:"origType"`
	TimeInForce   string `json:"timeInForce"`
	Price         string `json:"price"`
	Qty           string `json:"qty"`
	LeavesQty     string `json:"leavesQty"`
	OrderID       string `json:"orderId"`
	OrderLinkID   string `json:"orderLinkId"`
	OrderStatus   string `json:"orderStatus"`
}

func (h *ordersHandler) toOrder(row orderRow) model.Order {
	return model.NewOrder(
		h.symbol,
		sideConverter.ToNum(row.Side),
		orderTypeConverter.ToNum(row.OrigType),
		timeInForceConverter.ToNum(row.TimeInForce),
		parseFloat(row.Qty)-parseFloat(row.LeavesQty),
		parseFloat(row.Price),
		row.OrderID,
		row.OrderLinkID,
	)
}

func (h *ordersHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		List []orderRow `json:"list"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "orders refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = model.NewOrders()
	for _, row := range frame.List {
		if row.Symbol != h.symbol {
			continue
		}
		order := h.toOrder(row)
		h.live.Upsert(order)
	}
	return nil
}

func (h *ordersHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []orderRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "orders process")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, row := range frame.Data {
		if row.Symbol != h.symbol {
			continue
		}
		switch {
		case ordersOverwriteStatuses[row.OrderStatus]:
			order := h.toOrder(row)
			h.live.Upsert(order)
		case ordersRemoveStatuses[row.OrderStatus]:
			h.live.Remove(row.OrderID)
		}
	}
	return nil
}

// positionHandler maintains one symbol's live Position.
type positionHandler struct {
	symbol   string
	mu       sync.Mutex
	position *model.Position
}

func newPositionHandler(symbol string, position *model.Position) *positionHandler {
	return &positionHandler{symbol: symbol, position: position}
}

func (h *positionHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Result struct {
			List []struct {
				Symbol        string `json:"symbol"`
				Side          string `json:"side"`
				AvgPrice      string `json:"avgPrice"`
				Size          string `json:"size"`
				UnrealisedPnl string `json:"unrealisedPnl"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "position refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range frame.Result.List {
		if p.Symbol != h.symbol {
			continue
		}
		h.position.Symbol = h.symbol
		h.position.Update(
			positionDirectionConverter.ToNum(p.Side),
			parseFloat(p.AvgPrice),
			parseFloat(p.Size),
			parseFloat(p.UnrealisedPnl),
		)
	}
	return nil
}

func (h *positionHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			EntryPrice    string `json:"entryPrice"`
			Size          string `json:"size"`
			UnrealisedPnl string `json:"unrealisedPnl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "position process")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range frame.Data {
		if p.Symbol != h.symbol {
			continue
		}
		h.position.Update(
			positionDirectionConverter.ToNum(p.Side),
			parseFloat(p.EntryPrice),
			parseFloat(p.Size),
			parseFloat(p.UnrealisedPnl),
		)
	}
	return nil
}

// tickerHandler maintains one symbol's funding/mark/index state.
type tickerHandler struct {
	mu     sync.Mutex
	ticker *model.Ticker
}

func newTickerHandler(ticker *model.Ticker) *tickerHandler {
	return &tickerHandler{ticker: ticker}
}

type tickerFrame struct {
	NextFundingTime string `json:"nextFundingTime"`
	FundingRate     string `json:"fundingRate"`
	MarkPrice       string `json:"markPrice"`
	IndexPrice      string `json:"indexPrice"`
}

func (h *tickerHandler) apply(frame tickerFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if frame.NextFundingTime != "" {
		h.ticker.NextFundingTime = int64(parseFloat(frame.NextFundingTime))
	}
	if frame.FundingRate != "" {
		h.ticker.FundingRate = parseFloat(frame.FundingRate)
	}
	if frame.MarkPrice != "" {
		h.ticker.MarkPrice = parseFloat(frame.MarkPrice)
	}
	if frame.IndexPrice != "" {
		h.ticker.IndexPrice = parseFloat(frame.IndexPrice)
	}
}

func (h *tickerHandler) Refresh(payload json.RawMessage) error {
	var frame tickerFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "ticker refresh")
	}
	h.apply(frame)
	return nil
}

func (h *tickerHandler) Process(payload json.RawMessage) error {
	var frame tickerFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "ticker process")
	}
	h.apply(frame)
	return nil
}

// ohlcvHandler maintains a CandlesRing for one symbol/interval.
type ohlcvHandler struct {
	candles *model.CandlesRing
}

func newOhlcvHandler(candles *model.CandlesRing) *ohlcvHandler {
	return &ohlcvHandler{candles: candles}
}

func toCandle(row [7]string) model.Candle {
	return model.Candle{
		Timestamp: int64(parseFloat(row[0])),
		Open:      parseFloat(row[1]),
		High:      parseFloat(row[2]),
		Low:       parseFloat(row[3]),
		Close:     parseFloat(row[4]),
		Volume:    parseFloat(row[6]),
	}
}

func (h *ohlcvHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Result struct {
			List [][7]string `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "ohlcv refresh")
	}
	h.candles.Reset()
	for _, row := range frame.Result.List {
		h.candles.Append(toCandle(row))
	}
	return nil
}

func (h *ohlcvHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []struct {
			Start  string `json:"start"`
			Open   string `json:"open"`
			High   string `json:"high"`
			Low    string `json:"low"`
			Close  string `json:"close"`
			Volume string `json:"volume"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "bybit", "ohlcv process")
	}
	for _, c := range frame.Data {
		h.candles.Append(model.Candle{
			Timestamp: int64(parseFloat(c.Start)),
			Open:      parseFloat(c.Open),
			High:      parseFloat(c.High),
			Low:       parseFloat(c.Low),
			Close:     parseFloat(c.Close),
			Volume:    parseFloat(c.Volume),
		})
	}
	return nil
}
