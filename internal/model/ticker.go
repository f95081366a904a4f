package model

// Ticker holds a symbol's latest funding/mark state. Updated only on
// a venue push or a scheduled refresher tick, never interpolated.
type Ticker struct {
	Symbol          string
	NextFundingTime int64
	FundingRate     float64
	MarkPrice       float64
	IndexPrice      float64
}

// FundingRateBps returns the funding rate expressed in basis points.
func (t Ticker) FundingRateBps() float64 {
	return t.FundingRate * 10_000
}

// ToMap renders the ticker as a plain map for logging and snapshotting.
func (t Ticker) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"symbol":            t.Symbol,
		"next_funding_time": t.NextFundingTime,
		"funding_rate":      t.FundingRate,
		"funding_rate_bps":  t.FundingRateBps(),
		"mark_price":        t.MarkPrice,
		"index_price":       t.IndexPrice,
	}
}
