package model

// ring is a fixed-capacity circular buffer owning its backing array.
// Append is O(1); once full, the oldest entry is evicted in arrival
// order. Built by hand rather than pulled from a third-party ring
// buffer package because TradesRing/CandlesRing need a Recordable
// projection and, for candles, a same-timestamp replace rule that a
// generic off-the-shelf buffer does not expose.
type ring[T any] struct {
	buf   []T
	start int
	count int
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) capacity() int { return len(r.buf) }

func (r *ring[T]) len() int { return r.count }

// append adds item as the newest entry, evicting the oldest if full.
func (r *ring[T]) append(item T) {
	cap := len(r.buf)
	if cap == 0 {
		return
	}
	if r.count < cap {
		idx := (r.start + r.count) % cap
		r.buf[idx] = item
		r.count++
		return
	}
	r.buf[r.start] = item
	r.start = (r.start + 1) % cap
}

// replaceLast overwrites the most recently appended entry in place.
// No-op if the ring is empty.
func (r *ring[T]) replaceLast(item T) {
	if r.count == 0 {
		return
	}
	idx := (r.start + r.count - 1) % len(r.buf)
	r.buf[idx] = item
}

// last returns the most recently appended entry and true, or the zero
// value and false if the ring is empty.
func (r *ring[T]) last() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	idx := (r.start + r.count - 1) % len(r.buf)
	return r.buf[idx], true
}

// slice returns entries oldest-first as a fresh, owned slice.
func (r *ring[T]) slice() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

func (r *ring[T]) reset() {
	r.start = 0
	r.count = 0
}

// TradesRing is a fixed-capacity FIFO of recent prints. Every append
// is a plain eviction-on-overflow append, no dedup.
type TradesRing struct {
	r ring[Trade]
}

// NewTradesRing builds a TradesRing with the given capacity.
func NewTradesRing(capacity int) *TradesRing {
	r := newRing[Trade](capacity)
	return &TradesRing{r: r}
}

func (t *TradesRing) Append(trade Trade) { t.r.append(trade) }
func (t *TradesRing) Len() int           { return t.r.len() }
func (t *TradesRing) Slice() []Trade     { return t.r.slice() }
func (t *TradesRing) Reset()             { t.r.reset() }

// Recordable renders the ring as a list of per-row dicts, oldest first.
func (t *TradesRing) Recordable() []map[string]interface{} {
	rows := t.r.slice()
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = row.ToMap()
	}
	return out
}

// CandlesRing is a fixed-capacity FIFO of OHLCV bars with one twist:
// if the incoming candle's timestamp matches the current head's
// (the most recently appended bar), the head is replaced in place
// rather than appended as a new bar — the same bucket is still open.
type CandlesRing struct {
	r ring[Candle]
}

// NewCandlesRing builds a CandlesRing with the given capacity.
func NewCandlesRing(capacity int) *CandlesRing {
	r := newRing[Candle](capacity)
	return &CandlesRing{r: r}
}

// Append applies the same-timestamp-head-replace rule.
func (c *CandlesRing) Append(candle Candle) {
	if last, ok := c.r.last(); ok && last.Timestamp == candle.Timestamp {
		c.r.replaceLast(candle)
		return
	}
	c.r.append(candle)
}

func (c *CandlesRing) Len() int         { return c.r.len() }
func (c *CandlesRing) Slice() []Candle  { return c.r.slice() }
func (c *CandlesRing) Reset()           { c.r.reset() }

// Recordable renders the ring as a list of per-row dicts, oldest first.
func (c *CandlesRing) Recordable() []map[string]interface{} {
	rows := c.r.slice()
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = row.ToMap()
	}
	return out
}
