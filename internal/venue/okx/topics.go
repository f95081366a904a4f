package okx

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

func parseLevels(rows [][2]string) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderbook.Level{Price: parseFloat(r[0]), Size: parseFloat(r[1])})
	}
	return out
}

// orderbookHandler applies OKX's books channel, which carries its own
// seqId/prevSeqId chain independent of the Book's internal sequence
// id. prevSeqId == -1 or an explicit "snapshot" action resets the
// book; otherwise a frame is only applied once its prevSeqId lines up
// with the last seqId this handler saw, matching the upstream
// client's own resync-on-mismatch behavior (a gap here is left to the
// next periodic REST refresh to repair, rather than raising). A REST
// Refresh carries no seqId and sets lastSeqID to 0; with lastSeqID 0
// the next frame is applied without the prevSeqId check and restarts
// the chain.
type orderbookHandler struct {
	book      *orderbook.Book
	lastSeqID int64
}

func newOrderbookHandler(book *orderbook.Book) *orderbookHandler {
	return &orderbookHandler{book: book}
}

func (h *orderbookHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Data []struct {
			Bids [][2]string `json:"bids"`
			Asks [][2]string `json:"asks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "orderbook refresh")
	}
	if len(frame.Data) == 0 {
		return nil
	}
	row := frame.Data[0]
	h.book.Refresh(parseLevels(row.Asks), parseLevels(row.Bids), 0)
	h.lastSeqID = 0
	return nil
}

func (h *orderbookHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Action string `json:"action"`
		Data   []struct {
			Bids     [][2]string `json:"bids"`
			Asks     [][2]string `json:"asks"`
			SeqID    int64       `json:"seqId"`
			PrevSeqID int64      `json:"prevSeqId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "orderbook process")
	}
	if len(frame.Data) == 0 {
		return nil
	}
	row := frame.Data[0]

	if row.PrevSeqID == -1 || frame.Action == "snapshot" {
		h.book.Refresh(parseLevels(row.Asks), parseLevels(row.Bids), row.SeqID)
		h.lastSeqID = row.SeqID
		return nil
	}

	switch {
	case row.SeqID > h.lastSeqID:
		if h.lastSeqID != 0 && row.PrevSeqID != h.lastSeqID {
			// sequence gap: drop this frame and wait for the next
			// scheduled Refresh to resync, same as a dropped delta on
			// the other venues.
			return nil
		}
		h.lastSeqID = row.SeqID
		if len(row.Bids) > 0 {
			h.book.UpdateBids(parseLevels(row.Bids), row.SeqID)
		}
		if len(row.Asks) > 0 {
			h.book.UpdateAsks(parseLevels(row.Asks), row.SeqID)
		}
	case row.SeqID < h.lastSeqID:
		h.lastSeqID = row.SeqID
	}
	return nil
}

// tradesHandler appends OKX's trades channel prints.
type tradesHandler struct {
	trades *model.TradesRing
}

func newTradesHandler(trades *model.TradesRing) *tradesHandler {
	return &tradesHandler{trades: trades}
}

type okxTradeRow struct {
	Ts   string `json:"ts"`
	Side string `json:"side"`
	Px   string `json:"px"`
	Sz   string `json:"sz"`
}

func (h *tradesHandler) appendRows(rows []okxTradeRow) {
	for _, row := range rows {
		h.trades.Append(model.Trade{
			Timestamp: int64(parseFloat(row.Ts)) / 1000,
			Side:      sideConverter.ToNum(row.Side),
			Price:     parseFloat(row.Px),
			Size:      parseFloat(row.Sz),
		})
	}
}

func (h *tradesHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Data []okxTradeRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "trades refresh")
	}
	h.trades.Reset()
	h.appendRows(frame.Data)
	return nil
}

func (h *tradesHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []okxTradeRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "trades process")
	}
	h.appendRows(frame.Data)
	return nil
}

var ordersOverwriteStatuses = map[string]bool{"live": true, "partially_filled": true}

// ordersHandler maintains live order state for one symbol from OKX's
// orders channel. orderType/timeInForce are left unset on refresh —
// OKX's open-orders snapshot row carries neither field in a form this
// handler can convert unambiguously, matching the upstream client's
// own commented-out conversion on that path.
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

type okxOrderRow struct {
	InstID      string `json:"instId"`
	Side        string `json:"side"`
	OrdType     string `json:"ordType"`
	Px          string `json:"px"`
	Sz          string `json:"sz"`
	OrdID       string `json:"ordId"`
	ClOrdID     string `json:"clOrdId"`
	State       string `json:"state"`
}

func (h *ordersHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		List []okxOrderRow `json:"list"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "orders refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = model.NewOrders()
	for _, row := range frame.List {
		if row.InstID != h.symbol {
			continue
		}
		order := model.NewOrder(
			h.symbol,
			sideConverter.ToNum(row.Side),
			model.OrderTypeLimit,
			model.TimeInForceGTC,
			parseFloat(row.Sz),
			parseFloat(row.Px),
			row.OrdID,
			row.ClOrdID,
		)
		h.live.Upsert(order)
	}
	return nil
}

func (h *ordersHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []okxOrderRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "orders process")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, row := range frame.Data {
		if row.InstID != h.symbol {
			continue
		}
		if ordersOverwriteStatuses[row.State] {
			order := model.NewOrder(
				h.symbol,
				sideConverter.ToNum(row.Side),
				orderTypeConverter.ToNum(row.OrdType),
				timeInForceConverter.ToNum(row.OrdType),
				parseFloat(row.Sz),
				parseFloat(row.Px),
				row.OrdID,
				row.ClOrdID,
			)
			h.live.Upsert(order)
		} else {
			h.live.Remove(row.OrdID)
		}
	}
	return nil
}

// positionHandler maintains one symbol's live Position from OKX's
// positions channel.
type positionHandler struct {
	symbol   string
	mu       sync.Mutex
	position *model.Position
}

func newPositionHandler(symbol string, position *model.Position) *positionHandler {
	return &positionHandler{symbol: symbol, position: position}
}

type okxPositionRow struct {
	InstID  string `json:"instId"`
	PosSide string `json:"posSide"`
	AvgPx   string `json:"avgPx"`
	Pos     string `json:"pos"`
	Upl     string `json:"upl"`
}

func (h *positionHandler) apply(rows []okxPositionRow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range rows {
		if p.InstID != h.symbol {
			continue
		}
		h.position.Symbol = h.symbol
		h.position.Update(
			positionDirectionConverter.ToNum(p.PosSide),
			parseFloat(p.AvgPx),
			parseFloat(p.Pos),
			parseFloat(p.Upl),
		)
	}
}

func (h *positionHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Data []okxPositionRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "position refresh")
	}
	h.apply(frame.Data)
	return nil
}

func (h *positionHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []okxPositionRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "position process")
	}
	h.apply(frame.Data)
	return nil
}

// tickerHandler maintains funding/mark state from OKX's tickers
// channel, the one ticker-style channel this port subscribes and
// routes here. A field missing from a row leaves the previous value.
type tickerHandler struct {
	symbol string
	mu     sync.Mutex
	ticker *model.Ticker
}

func newTickerHandler(symbol string, ticker *model.Ticker) *tickerHandler {
	return &tickerHandler{symbol: symbol, ticker: ticker}
}

type okxTickerRow struct {
	MarkPx      string `json:"markPx"`
	IdxPx       string `json:"idxPx"`
	FundingRate string `json:"fundingRate"`
	FundingTime string `json:"fundingTime"`
}

func (h *tickerHandler) apply(row okxTickerRow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticker.Symbol = h.symbol
	if row.MarkPx != "" {
		h.ticker.MarkPrice = parseFloat(row.MarkPx)
	}
	if row.IdxPx != "" {
		h.ticker.IndexPrice = parseFloat(row.IdxPx)
	}
	if row.FundingRate != "" {
		h.ticker.FundingRate = parseFloat(row.FundingRate)
	}
	if row.FundingTime != "" {
		h.ticker.NextFundingTime = int64(parseFloat(row.FundingTime)) / 1000
	}
}

func (h *tickerHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Data []okxTickerRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "ticker refresh")
	}
	if len(frame.Data) == 0 {
		return nil
	}
	h.apply(frame.Data[0])
	return nil
}

func (h *tickerHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []okxTickerRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "ticker process")
	}
	if len(frame.Data) == 0 {
		return nil
	}
	h.apply(frame.Data[0])
	return nil
}

// ohlcvHandler maintains a CandlesRing from OKX's candle channel. Row
// fields are positional ([ts, o, h, l, c, vol, ...]), matching the
// wire's array-of-arrays shape rather than a keyed object.
type ohlcvHandler struct {
	candles *model.CandlesRing
}

func newOhlcvHandler(candles *model.CandlesRing) *ohlcvHandler {
	return &ohlcvHandler{candles: candles}
}

func parseCandleRow(row []string) model.Candle {
	return model.Candle{
		Timestamp: int64(parseFloat(row[0])) / 1000,
		Open:      parseFloat(row[1]),
		High:      parseFloat(row[2]),
		Low:       parseFloat(row[3]),
		Close:     parseFloat(row[4]),
		Volume:    parseFloat(row[5]),
	}
}

func (h *ohlcvHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Data [][]string `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "ohlcv refresh")
	}
	h.candles.Reset()
	for _, row := range frame.Data {
		if len(row) < 6 {
			continue
		}
		h.candles.Append(parseCandleRow(row))
	}
	return nil
}

func (h *ohlcvHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data [][]string `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "okx", "ohlcv process")
	}
	for _, row := range frame.Data {
		if len(row) < 6 {
			continue
		}
		h.candles.Append(parseCandleRow(row))
	}
	return nil
}
