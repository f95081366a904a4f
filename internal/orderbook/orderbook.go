// Package orderbook implements the two-sided, depth-bounded L2 book
// shared by every venue session: bids sorted descending, asks sorted
// ascending, a cached best-bid-ask pair, and a monotonic sequence id
// used to silently drop out-of-order deltas.
package orderbook

import (
	"math"
	"sort"
	"sync"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

// Level is one price/size pair in the book.
type Level struct {
	Price float64
	Size  float64
}

// Book is a fixed-capacity, two-sided price-level book for one
// symbol. The zero value is not usable; construct with New.
//
// Shared-resource policy: writes come from the venue session's public
// stream goroutine (UpdateBids/UpdateAsks/UpdateFull and post-reconnect
// Refresh) and from its scheduled REST refresh goroutine (Refresh).
// Readers call the analytics methods and Recordable from any
// goroutine. The mutex serializes all of these, writers included.
type Book struct {
	mu    sync.RWMutex
	depth int
	bids  []Level
	asks  []Level
	bba   [2]Level // bba[0] = best bid, bba[1] = best ask
	seqID int64
}

// New builds an empty Book bounded to depth price levels per side.
func New(depth int) *Book {
	return &Book{depth: depth}
}

// Reset clears the book back to its zero state, keeping depth.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Book) reset() {
	b.bids = nil
	b.asks = nil
	b.bba = [2]Level{}
	b.seqID = 0
}

// Recordable renders the book's current state as plain Go values,
// suitable for logging or snapshotting to a database.
func (b *Book) Recordable() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return map[string]interface{}{
		"seq_id": b.seqID,
		"bids":   append([]Level(nil), b.bids...),
		"asks":   append([]Level(nil), b.asks...),
	}
}

// SeqID returns the book's current sequence id.
func (b *Book) SeqID() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seqID
}

func sortBidsDesc(levels []Level) []Level {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price > levels[j].Price })
	return levels
}

func sortAsksAsc(levels []Level) []Level {
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
	return levels
}

func truncate(levels []Level, depth int) []Level {
	if len(levels) > depth {
		return levels[:depth]
	}
	return levels
}

func bestOf(levels []Level) Level {
	if len(levels) == 0 {
		return Level{}
	}
	return levels[0]
}

// Refresh replaces the book wholesale with a complete snapshot,
// unconditionally adopting newSeqID. Used on initial connect and
// after a forced resync.
func (b *Book) Refresh(asks, bids []Level, newSeqID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reset()
	b.seqID = newSeqID

	b.bids = sortBidsDesc(truncate(append([]Level(nil), bids...), b.depth))
	b.asks = sortAsksAsc(truncate(append([]Level(nil), asks...), b.depth))
	b.bba[0] = bestOf(b.bids)
	b.bba[1] = bestOf(b.asks)
}

// UpdateBids merges an incremental bid delta: entries whose price
// matches an incoming row are dropped regardless of size, then
// non-zero-size incoming rows are appended, and the side is re-sorted
// and truncated to depth. Empty deltas and deltas with a seq id
// trailing the book's current one are silently dropped, not buffered.
func (b *Book) UpdateBids(bids []Level, newSeqID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(bids) == 0 || newSeqID < b.seqID {
		return
	}
	b.seqID = newSeqID
	b.bids = b.mergeSide(b.bids, bids, true)
	b.bba[0] = bestOf(b.bids)
}

// UpdateAsks is UpdateBids's mirror for the ask side.
func (b *Book) UpdateAsks(asks []Level, newSeqID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(asks) == 0 || newSeqID < b.seqID {
		return
	}
	b.seqID = newSeqID
	b.asks = b.mergeSide(b.asks, asks, false)
	b.bba[1] = bestOf(b.asks)
}

// UpdateFull applies an incremental delta to both sides under a
// single sequence id.
func (b *Book) UpdateFull(asks, bids []Level, newSeqID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if newSeqID < b.seqID {
		return
	}
	b.seqID = newSeqID
	if len(asks) > 0 {
		b.asks = b.mergeSide(b.asks, asks, false)
		b.bba[1] = bestOf(b.asks)
	}
	if len(bids) > 0 {
		b.bids = b.mergeSide(b.bids, bids, true)
		b.bba[0] = bestOf(b.bids)
	}
}

func (b *Book) mergeSide(existing, delta []Level, descending bool) []Level {
	deltaPrices := make(map[float64]struct{}, len(delta))
	for _, l := range delta {
		deltaPrices[l.Price] = struct{}{}
	}

	kept := existing[:0:0]
	for _, l := range existing {
		if _, matched := deltaPrices[l.Price]; !matched {
			kept = append(kept, l)
		}
	}
	for _, l := range delta {
		if l.Size != 0 {
			kept = append(kept, l)
		}
	}

	if descending {
		kept = sortBidsDesc(kept)
	} else {
		kept = sortAsksAsc(kept)
	}
	return truncate(kept, b.depth)
}

// Mid returns the simple mid price, (best bid + best ask) / 2.
func (b *Book) Mid() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return (b.bba[0].Price + b.bba[1].Price) / 2.0
}

// WMid returns the inverse-size-weighted mid between best bid and
// best ask: imb = bidSize / (bidSize + askSize); wmid = bestBid*imb +
// bestAsk*(1-imb).
func (b *Book) WMid() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bid, ask := b.bba[0], b.bba[1]
	imb := bid.Size / (bid.Size + ask.Size)
	return bid.Price*imb + ask.Price*(1.0-imb)
}

// VAMP returns the volume-weighted average market price across both
// sides up to depth size each, with the crossing level partially
// filled rather than fully consumed.
func (b *Book) VAMP(depth float64) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bidSum, bidCum := sideVAMP(b.bids, depth)
	askSum, askCum := sideVAMP(b.asks, depth)

	total := bidCum + askCum
	if total == 0.0 {
		return 0.0
	}
	return (bidSum + askSum) / total
}

func sideVAMP(levels []Level, depth float64) (weightedSum, cum float64) {
	for _, l := range levels {
		if cum+l.Size > depth {
			remaining := depth - cum
			weightedSum += l.Price * remaining
			cum += remaining
			break
		}
		weightedSum += l.Price * l.Size
		cum += l.Size
		if cum >= depth {
			break
		}
	}
	return weightedSum, cum
}

// Spread returns best ask minus best bid.
func (b *Book) Spread() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bba[1].Price - b.bba[0].Price
}

// Slippage estimates the size-weighted average deviation from mid for
// a hypothetical order of size on the given side, capped at mid. A
// buy walks the ask side; a sell walks the bid side.
func (b *Book) Slippage(side model.Side, size float64) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	mid := (b.bba[0].Price + b.bba[1].Price) / 2.0
	levels := b.bids
	if side == model.SideBuy {
		levels = b.asks
	}

	var cum, slippage float64
	for _, l := range levels {
		cum += l.Size
		slippage += math.Abs(mid-l.Price) * l.Size
		if cum >= size {
			slippage /= cum
			break
		}
	}
	if slippage > mid {
		return mid
	}
	return slippage
}
