package dydx

import (
	"encoding/json"
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

func parseRows(rows [][2]string) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderbook.Level{Price: parseFloat(r[0]), Size: parseFloat(r[1])})
	}
	return out
}

// orderbookHandler applies dYdX v4 indexer orderbook channel frames.
// The initial subscribed frame carries a full book with no usable
// sequence id (message_id == 1 is treated as the snapshot boundary);
// subsequent frames are deltas keyed by message_id.
type orderbookHandler struct {
	book *orderbook.Book
}

func newOrderbookHandler(book *orderbook.Book) *orderbookHandler {
	return &orderbookHandler{book: book}
}

func (h *orderbookHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Bids [][2]string `json:"bids"`
		Asks [][2]string `json:"asks"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "orderbook refresh")
	}
	if len(frame.Bids) == 0 || len(frame.Asks) == 0 {
		return nil
	}
	h.book.Refresh(parseRows(frame.Asks), parseRows(frame.Bids), 0)
	return nil
}

func (h *orderbookHandler) Process(payload json.RawMessage) error {
	var frame struct {
		MessageID int64 `json:"message_id"`
		Contents  struct {
			Bids [][2]string `json:"bids"`
			Asks [][2]string `json:"asks"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "orderbook process")
	}

	if frame.MessageID == 1 {
		if len(frame.Contents.Bids) != 0 && len(frame.Contents.Asks) != 0 {
			h.book.Refresh(parseRows(frame.Contents.Asks), parseRows(frame.Contents.Bids), frame.MessageID)
		}
		return nil
	}

	if len(frame.Contents.Bids) != 0 {
		h.book.UpdateBids(parseRows(frame.Contents.Bids), frame.MessageID)
	}
	if len(frame.Contents.Asks) != 0 {
		h.book.UpdateAsks(parseRows(frame.Contents.Asks), frame.MessageID)
	}
	return nil
}

// tradesHandler appends dYdX indexer trade prints, translating its
// ISO-8601 createdAt timestamp into unix seconds.
type tradesHandler struct {
	trades *model.TradesRing
}

func newTradesHandler(trades *model.TradesRing) *tradesHandler {
	return &tradesHandler{trades: trades}
}

func iso8601ToUnix(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

type dydxTradeRow struct {
	CreatedAt string `json:"createdAt"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
}

func (h *tradesHandler) appendRows(rows []dydxTradeRow) {
	for _, row := range rows {
		h.trades.Append(model.Trade{
			Timestamp: iso8601ToUnix(row.CreatedAt),
			Side:      sideConverter.ToNum(row.Side),
			Price:     parseFloat(row.Price),
			Size:      parseFloat(row.Size),
		})
	}
}

func (h *tradesHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Contents struct {
			Trades []dydxTradeRow `json:"trades"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "trades refresh")
	}
	h.trades.Reset()
	h.appendRows(frame.Contents.Trades)
	return nil
}

func (h *tradesHandler) Process(payload json.RawMessage) error {
	var frame struct {
		MessageID int64 `json:"message_id"`
		Contents  struct {
			Trades []dydxTradeRow `json:"trades"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "trades process")
	}
	h.appendRows(frame.Contents.Trades)
	return nil
}

var ordersOverwriteStatuses = map[string]bool{"OPEN": true, "BEST_EFFORT_OPENED": true}
var ordersRemoveStatuses = map[string]bool{"FILLED": true, "CANCELED": true, "BEST_EFFORT_CANCELED": true, "UNTRIGGERED": true}

// ordersHandler maintains live order state for one symbol from the
// indexer's subaccounts channel order updates.
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

// dydxOrderRow covers both the REST refresh shape (keyed "id") and
// the subaccounts channel's process shape (keyed "orderId"): both
// fields are decoded, and venueOrderID returns whichever is set; both
// key the same venue order id.
type dydxOrderRow struct {
	Ticker      string `json:"ticker"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"timeInForce"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	TotalFilled string `json:"totalFilled"`
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	ClientID    string `json:"clientId"`
	OrderStatus string `json:"orderStatus"`
}

func (row dydxOrderRow) venueOrderID() string {
	if row.OrderID != "" {
		return row.OrderID
	}
	return row.ID
}

func (h *ordersHandler) toOrder(row dydxOrderRow) model.Order {
	return model.NewOrder(
		h.symbol,
		sideConverter.ToNum(row.Side),
		orderTypeConverter.ToNum(row.Type),
		timeInForceConverter.ToNum(row.TimeInForce),
		parseFloat(row.Size)-parseFloat(row.TotalFilled),
		parseFloat(row.Price),
		row.venueOrderID(),
		row.ClientID,
	)
}

func (h *ordersHandler) Refresh(payload json.RawMessage) error {
	var rows []dydxOrderRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "orders refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = model.NewOrders()
	for _, row := range rows {
		if row.Ticker != h.symbol {
			continue
		}
		order := h.toOrder(row)
		h.live.Upsert(order)
	}
	return nil
}

func (h *ordersHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Data []dydxOrderRow `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "orders process")
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
			h.live.Remove(row.venueOrderID())
		}
	}
	return nil
}

// positionHandler maintains one symbol's live Position from the
// indexer's subaccounts channel.
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
		Positions []struct {
			Symbol         string `json:"symbol"`
			Side           string `json:"side"`
			AvgPrice       string `json:"avgPrice"`
			Size           string `json:"size"`
			UnrealisedPnl  string `json:"unrealisedPnl"`
		} `json:"positions"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "position refresh")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range frame.Positions {
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
		Contents []struct {
			Market        string `json:"market"`
			Side          string `json:"side"`
			EntryPrice    string `json:"entryPrice"`
			Size          string `json:"size"`
			UnrealisedPnl string `json:"unrealisedPnl"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "position process")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range frame.Contents {
		if p.Market != h.symbol {
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

// tickerHandler maintains funding/mark state for one symbol. dYdX
// does not push an explicit next-funding timestamp; instead the
// handler snaps to the next of the known UTC funding boundaries
// (00:00, 08:00, 16:00) every time it applies an update.
type tickerHandler struct {
	symbol string
	mu     sync.Mutex
	ticker *model.Ticker
}

func newTickerHandler(symbol string, ticker *model.Ticker) *tickerHandler {
	return &tickerHandler{symbol: symbol, ticker: ticker}
}

// nearestFundingTime returns the unix timestamp of the next funding
// boundary among {08:00, 16:00, 24:00 (i.e. next midnight)} UTC. The
// 0h target is treated as the *next* midnight rather than the most
// recent one, so it always yields a strictly positive offset.
func nearestFundingTime(now time.Time) int64 {
	utc := now.UTC()
	secondsSinceMidnight := utc.Hour()*3600 + utc.Minute()*60 + utc.Second()
	targets := []int{8 * 3600, 16 * 3600, 24 * 3600}

	best := -1
	for _, target := range targets {
		diff := ((target-secondsSinceMidnight)%86400 + 86400) % 86400
		if diff == 0 {
			diff = 86400
		}
		if best == -1 || diff < best {
			best = diff
		}
	}
	return now.Unix() + int64(best)
}

func (h *tickerHandler) apply(fundingRate, markPrice, indexPrice float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticker.Symbol = h.symbol
	h.ticker.NextFundingTime = nearestFundingTime(time.Now())
	h.ticker.FundingRate = fundingRate
	h.ticker.MarkPrice = markPrice
	h.ticker.IndexPrice = indexPrice
}

func (h *tickerHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Markets map[string]struct {
			NextFundingRate string `json:"nextFundingRate"`
			OraclePrice     string `json:"oraclePrice"`
		} `json:"markets"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "ticker refresh")
	}
	data, ok := frame.Markets[h.symbol]
	if !ok {
		return nil
	}
	h.apply(parseFloat(data.NextFundingRate), parseFloat(data.OraclePrice), parseFloat(data.OraclePrice))
	return nil
}

func (h *tickerHandler) Process(payload json.RawMessage) error {
	var frame struct {
		NextFundingRate string `json:"nextFundingRate"`
		OraclePrice     string `json:"oraclePrice"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "ticker process")
	}
	h.apply(parseFloat(frame.NextFundingRate), parseFloat(frame.OraclePrice), parseFloat(frame.OraclePrice))
	return nil
}

// ohlcvHandler maintains a CandlesRing from the indexer's candles
// REST snapshot. dYdX has no incremental kline stream; Process ignores
// the subscribed candles channel's pushes, so only Refresh changes the
// ring.
type ohlcvHandler struct {
	candles *model.CandlesRing
}

func newOhlcvHandler(candles *model.CandlesRing) *ohlcvHandler {
	return &ohlcvHandler{candles: candles}
}

type dydxCandleRow struct {
	StartedAt       string `json:"startedAt"`
	Open            string `json:"open"`
	High            string `json:"high"`
	Low             string `json:"low"`
	Close           string `json:"close"`
	BaseTokenVolume string `json:"baseTokenVolume"`
}

func (h *ohlcvHandler) appendRow(row dydxCandleRow) {
	h.candles.Append(model.Candle{
		Timestamp: iso8601ToUnix(row.StartedAt),
		Open:      parseFloat(row.Open),
		High:      parseFloat(row.High),
		Low:       parseFloat(row.Low),
		Close:     parseFloat(row.Close),
		Volume:    parseFloat(row.BaseTokenVolume),
	})
}

func (h *ohlcvHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Candles []dydxCandleRow `json:"candles"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "ohlcv refresh")
	}
	h.candles.Reset()
	for _, row := range frame.Candles {
		h.appendRow(row)
	}
	return nil
}

// Process is a no-op: dYdX's indexer exposes no incremental OHLCV
// stream, only the periodic candles channel refresh above.
func (h *ohlcvHandler) Process(payload json.RawMessage) error {
	return nil
}

// subaccountsHandler fans the v4_subaccounts channel out to the
// orders and position handlers: dYdX carries both updates on the
// same channel instead of the separate executionReport/ACCOUNT_UPDATE
// topics Binance and Bybit expose, so one TopicHandler must apply
// both rather than the dispatcher routing by sub-field.
type subaccountsHandler struct {
	orders   *ordersHandler
	position *positionHandler
}

func newSubaccountsHandler(orders *ordersHandler, position *positionHandler) *subaccountsHandler {
	return &subaccountsHandler{orders: orders, position: position}
}

func (h *subaccountsHandler) Refresh(payload json.RawMessage) error {
	var frame struct {
		Orders    []dydxOrderRow `json:"orders"`
		Positions json.RawMessage `json:"positions"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "subaccounts refresh")
	}
	if ordersPayload, err := json.Marshal(frame.Orders); err == nil {
		if err := h.orders.Refresh(ordersPayload); err != nil {
			return err
		}
	}
	if len(frame.Positions) > 0 {
		if err := h.position.Refresh(frame.Positions); err != nil {
			return err
		}
	}
	return nil
}

func (h *subaccountsHandler) Process(payload json.RawMessage) error {
	var frame struct {
		Contents struct {
			Orders            []dydxOrderRow  `json:"orders"`
			PerpetualPositions json.RawMessage `json:"perpetualPositions"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return model.Wrap(err, model.ErrSchema, "dydx", "subaccounts process")
	}
	if len(frame.Contents.Orders) > 0 {
		wrapped, err := json.Marshal(map[string]interface{}{"data": frame.Contents.Orders})
		if err != nil {
			return model.Wrap(err, model.ErrSchema, "dydx", "subaccounts process orders")
		}
		if err := h.orders.Process(wrapped); err != nil {
			return err
		}
	}
	if len(frame.Contents.PerpetualPositions) > 0 {
		wrapped, err := json.Marshal(map[string]json.RawMessage{"contents": frame.Contents.PerpetualPositions})
		if err != nil {
			return model.Wrap(err, model.ErrSchema, "dydx", "subaccounts process positions")
		}
		if err := h.position.Process(wrapped); err != nil {
			return err
		}
	}
	return nil
}
