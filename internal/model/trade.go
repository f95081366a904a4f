package model

// Trade is a single executed print. Append-only once constructed.
type Trade struct {
	Timestamp int64
	Side      Side
	Price     float64
	Size      float64
}

// ToMap renders the trade as a plain map, used for the TradesRing's
// Recordable projection.
func (t Trade) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": t.Timestamp,
		"side":      t.Side,
		"price":     t.Price,
		"size":      t.Size,
	}
}

// Candle is a single OHLCV bar.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ToMap renders the candle as a plain map, used for the CandlesRing's
// Recordable projection.
func (c Candle) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": c.Timestamp,
		"open":      c.Open,
		"high":      c.High,
		"low":       c.Low,
		"close":     c.Close,
		"volume":    c.Volume,
	}
}
