package model

// Position is the canonical representation of an open position on one
// symbol. Zero value is an empty (flat) position.
type Position struct {
	Symbol string
	Side   PositionDirection
	Price  float64
	Size   float64
	UPnl   float64
}

// IsEmpty reports whether the position carries no size.
func (p Position) IsEmpty() bool {
	return p.Size == 0
}

// InProfit reports whether the position's unrealized PnL is positive.
func (p Position) InProfit() bool {
	return p.UPnl > 0
}

// Update replaces the position's mutable fields in place, mirroring
// the behavior of a venue position-stream update.
func (p *Position) Update(side PositionDirection, price, size, uPnl float64) {
	p.Side = side
	p.Price = price
	p.Size = size
	p.UPnl = uPnl
}

// Clear resets the position to flat, keeping the symbol.
func (p *Position) Clear() {
	p.Side = PositionDirectionLong
	p.Price = 0
	p.Size = 0
	p.UPnl = 0
}

// ToMap renders the position as a plain map for logging.
func (p Position) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"symbol": p.Symbol,
		"side":   p.Side,
		"price":  p.Price,
		"size":   p.Size,
		"u_pnl":  p.UPnl,
	}
}
