package hyperliquid

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

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

type levelRow struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
}

func parseLevels(rows []levelRow) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderbook.Level{Price: parseFloat(r.Px), Size: parseFloat(r.Sz)})
	}
	return out
}

// orderbookHandler applies Hyperliquid's l2Book channel. The initial
// REST snapshot has no real sequence id (treated as 0); subsequent
// WS frames use the frame's own timestamp as the sequence id, since
// Hyperliquid does not publish one (grounded on the original's
// "use timestamp as a sequence ID" comment).
type orderbookHandler struct {
	book *orderbook.Book
}

func newOrderbookHandler(book *orderbook.Book) *orderbookHandler {
	return &orderbookHandler{book: book}
}

func (h *orderbookHandler) Refresh(payload json.RawMessage) error {
	var levels [2][]levelRow
	if err := json.Unmarshal(payload, &levels); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "orderbook refresh")
	}
	bids, asks := levels[0], levels[1]
	if len(bids) == 0 || len(asks) == 0 {
		return nil
	}
	h.book.Refresh(parseLevels(asks), parseLevels(bids), 0)
	return nil
}

func (h *orderbookHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data struct {
			Time   int64        `json:"time"`
			Levels [2][]levelRow `json:"levels"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "orderbook process")
	}
	bids, asks := frame.Data.Levels[0], frame.Data.Levels[1]
	if len(bids) != 0 {
		h.book.UpdateBids(parseLevels(bids), frame.Data.Time)
	}
	if len(asks) != 0 {
		h.book.UpdateAsks(parseLevels(asks), frame.Data.Time)
	}
	return nil
}

// tradesHandler appends Hyperliquid's trades channel prints.
type tradesHandler struct {
	trades *model.TradesRing
}

func newTradesHandler(trades *model.TradesRing) *tradesHandler {
	return &tradesHandler{trades: trades}
}

type hyperliquidTradeRow struct {
	Time int64  `json:"time"`
	Side string `json:"side"`
	Px   string `json:"px"`
	Sz   string `json:"sz"`
}

func sideFromWire(side string) model.Side {
	if side == "B" {
		return model.SideBuy
	}
	return model.SideSell
}

func (h *tradesHandler) appendRows(rows []hyperliquidTradeRow) {
	for _, row := range rows {
		h.trades.Append(model.Trade{
			Timestamp: row.Time / 1000,
			Side:      sideFromWire(row.Side),
			Price:     parseFloat(row.Px),
			Size:      parseFloat(row.Sz),
		})
	}
}

func (h *tradesHandler) Refresh(payload json.RawMessage) error {
	var rows []hyperliquidTradeRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "trades refresh")
	}
	h.trades.Reset()
	h.appendRows(rows)
	return nil
}

func (h *tradesHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []hyperliquidTradeRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "trades process")
	}
	h.appendRows(frame.Data)
	return nil
}

var ordersOverwriteStatuses = map[string]bool{"open": true}
var ordersRemoveStatuses = map[string]bool{"filled": true, "canceled": true, "triggered": true, "rejected": true, "marginCanceled": true}

// ordersHandler maintains live order state for one symbol from
// Hyperliquid's userHistoricalOrders channel. Hyperliquid never
// reports a timeInForce on the streaming path, so Process leaves it
// at its zero value (GTC) rather than guessing.
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
	var frame struct {
		List []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			OrigType      string `json:"origType"`
			TimeInForce   string `json:"timeInForce"`
			Price         string `json:"price"`
			Qty           string `json:"qty"`
			LeavesQty     string `json:"leavesQty"`
			OrderID       string `json:"orderId"`
			OrderLinkID   string `json:"orderLinkId"`
		} `json:"list"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "orders refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = model.NewOrders()
	for _, row := range frame.List {
		if row.Symbol != h.symbol {
			continue
		}
		order := model.NewOrder(
			h.symbol,
			sideConverter.ToNum(row.Side),
			orderTypeConverter.ToNum(row.OrigType),
			timeInForceConverter.ToNum(row.TimeInForce),
			parseFloat(row.Qty)-parseFloat(row.LeavesQty),
			parseFloat(row.Price),
			row.OrderID,
			row.OrderLinkID,
		)
		h.live.Upsert(order)
	}
	return nil
}

func (h *ordersHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Status string `json:"status"`
		Order  struct {
			Coin    string `json:"coin"`
			Side    string `json:"side"`
			LimitPx string `json:"limitPx"`
			OrigSz  string `json:"origSz"`
			Sz      string `json:"sz"`
			OID     int64  `json:"oid"`
			CLOID   string `json:"cloid"`
		} `json:"order"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "orders process")
	}
	o := frame.Order
	if o.Coin != h.symbol {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	orderID := strconv.FormatInt(o.OID, 10)
	switch {
	case ordersOverwriteStatuses[frame.Status]:
		order := model.NewOrder(
			h.symbol,
			sideConverter.ToNum(o.Side),
			model.OrderTypeLimit, // not provided on the streaming path, assumed LIMIT
			model.TimeInForceGTC, // not provided
			parseFloat(o.OrigSz)-parseFloat(o.Sz),
			parseFloat(o.LimitPx),
			orderID,
			o.CLOID,
		)
		h.live.Upsert(order)
	case ordersRemoveStatuses[frame.Status]:
		h.live.Remove(orderID)
	}
	return nil
}

// positionHandler maintains one symbol's live Position. Hyperliquid's
// webData2 frames carry no explicit long/short field — direction is
// derived from sign(size) instead.
type positionHandler struct {
	symbol   string
	mu       sync.Mutex
	position *model.Position
}

func newPositionHandler(symbol string, position *model.Position) *positionHandler {
	return &positionHandler{symbol: symbol, position: position}
}

func directionFromSize(size float64) model.PositionDirection {
	if size >= 0 {
		return model.PositionDirectionLong
	}
	return model.PositionDirectionShort
}

type hyperliquidAssetPositionRow struct {
	Coin          string `json:"coin"`
	EntryPx       string `json:"entryPx"`
	Szi           string `json:"szi"`
	UnrealizedPnl string `json:"unrealizedPnl"`
}

func (h *positionHandler) apply(rows []hyperliquidAssetPositionRow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range rows {
		if p.Coin != h.symbol {
			continue
		}
		size := parseFloat(p.Szi)
		h.position.Symbol = h.symbol
		h.position.Update(directionFromSize(size), parseFloat(p.EntryPx), size, parseFloat(p.UnrealizedPnl))
	}
}

func (h *positionHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		AssetPositions []hyperliquidAssetPositionRow `json:"assetPositions"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "position refresh")
	}
	h.apply(frame.AssetPositions)
	return nil
}

func (h *positionHandler) Process(payload json.RawMessage) error {
	var frame struct {
		AssetPositions []hyperliquidAssetPositionRow `json:"assetPositions"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "position process")
	}
	h.apply(frame.AssetPositions)
	return nil
}

// tickerHandler maintains funding/mark state from the webData2
// channel (through web2DataHandler), reading the frame's data.ctx
// fields. Hyperliquid funds hourly on the turn of the clock, unlike
// the 8h-cadence venues, so the next-funding estimate is simply the
// top of the next hour.
type tickerHandler struct {
	symbol string
	mu     sync.Mutex
	ticker *model.Ticker
}

func newTickerHandler(symbol string, ticker *model.Ticker) *tickerHandler {
	return &tickerHandler{symbol: symbol, ticker: ticker}
}

func nextHourUnix(now time.Time) int64 {
	utc := now.UTC()
	currentHour := time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), 0, 0, 0, time.UTC)
	return currentHour.Add(time.Hour).Unix()
}

func (h *tickerHandler) Refresh(payload json.RawMessage) error {
	// Hyperliquid's REST snapshot for ticker is folded into the
	// position/account query elsewhere; the stream is this handler's
	// only source of funding/mark state.
	return nil
}

func (h *tickerHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data struct {
			Ctx struct {
				Funding  string `json:"funding"`
				MarkPx   string `json:"markPx"`
				OraclePx string `json:"oraclePx"`
			} `json:"ctx"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "ticker process")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticker.Symbol = h.symbol
	h.ticker.NextFundingTime = nextHourUnix(time.Now())
	h.ticker.FundingRate = parseFloat(frame.Data.Ctx.Funding)
	h.ticker.MarkPrice = parseFloat(frame.Data.Ctx.MarkPx)
	h.ticker.IndexPrice = parseFloat(frame.Data.Ctx.OraclePx)
	return nil
}

// web2DataHandler fans the webData2 channel out to both the ticker
// and position handlers, mirroring the upstream client's pairing of
// the two under one subscription.
type web2DataHandler struct {
	ticker   *tickerHandler
	position *positionHandler
}

func newWeb2DataHandler(ticker *tickerHandler, position *positionHandler) *web2DataHandler {
	return &web2DataHandler{ticker: ticker, position: position}
}

func (h *web2DataHandler) Refresh(payload json.RawMessage) error {
	if err := h.ticker.Refresh(payload); err != nil {
		return err
	}
	return h.position.Refresh(payload)
}

func (h *web2DataHandler) Process(payload json.RawMessage) error {
	if err := h.ticker.Process(payload); err != nil {
		return err
	}
	return h.position.Process(payload)
}

// ohlcvHandler maintains a CandlesRing from Hyperliquid's candle
// channel.
type ohlcvHandler struct {
	candles *model.CandlesRing
}

func newOhlcvHandler(candles *model.CandlesRing) *ohlcvHandler {
	return &ohlcvHandler{candles: candles}
}

type hyperliquidCandleRow struct {
	T int64  `json:"t"`
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
	V string `json:"v"`
}

func (h *ohlcvHandler) appendRow(row hyperliquidCandleRow) {
	h.candles.Append(model.Candle{
		Timestamp: row.T / 1000,
		Open:      parseFloat(row.O),
		High:      parseFloat(row.H),
		Low:       parseFloat(row.L),
		Close:     parseFloat(row.C),
		Volume:    parseFloat(row.V),
	})
}

func (h *ohlcvHandler) Refresh(payload json.RawMessage) error {
	var rows []hyperliquidCandleRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "ohlcv refresh")
	}
	h.candles.Reset()
	for _, row := range rows {
		h.appendRow(row)
	}
	return nil
}

func (h *ohlcvHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data hyperliquidCandleRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "hyperliquid", "ohlcv process")
	}
	h.appendRow(frame.Data)
	return nil
}
