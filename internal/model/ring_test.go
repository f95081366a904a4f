package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradesRingEvictsOldestInArrivalOrder(t *testing.T) {
	r := NewTradesRing(3)

	for i := 0; i < 5; i++ {
		r.Append(Trade{Timestamp: int64(i), Price: float64(i)})
	}

	require.Equal(t, 3, r.Len())
	rows := r.Slice()
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[0].Timestamp)
	assert.Equal(t, int64(3), rows[1].Timestamp)
	assert.Equal(t, int64(4), rows[2].Timestamp)
}

func TestTradesRingUnderCapacityKeepsEverything(t *testing.T) {
	r := NewTradesRing(5)
	r.Append(Trade{Timestamp: 1})
	r.Append(Trade{Timestamp: 2})

	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Recordable(), 2)
}

func TestTradesRingResetClears(t *testing.T) {
	r := NewTradesRing(3)
	r.Append(Trade{Timestamp: 1})
	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Slice())
}

func TestCandlesRingReplacesSameTimestampHead(t *testing.T) {
	r := NewCandlesRing(3)

	r.Append(Candle{Timestamp: 100, Close: 10})
	r.Append(Candle{Timestamp: 100, Close: 11})

	require.Equal(t, 1, r.Len())
	rows := r.Slice()
	require.Len(t, rows, 1)
	assert.Equal(t, 11.0, rows[0].Close)
}

func TestCandlesRingOpensNewBarOnDistinctTimestamp(t *testing.T) {
	r := NewCandlesRing(3)

	r.Append(Candle{Timestamp: 100, Close: 10})
	r.Append(Candle{Timestamp: 160, Close: 12})

	require.Equal(t, 2, r.Len())
	rows := r.Slice()
	assert.Equal(t, int64(100), rows[0].Timestamp)
	assert.Equal(t, int64(160), rows[1].Timestamp)
}

func TestCandlesRingEvictsOldestBarsOnceFull(t *testing.T) {
	r := NewCandlesRing(2)

	r.Append(Candle{Timestamp: 1})
	r.Append(Candle{Timestamp: 2})
	r.Append(Candle{Timestamp: 3})

	require.Equal(t, 2, r.Len())
	rows := r.Slice()
	assert.Equal(t, int64(2), rows[0].Timestamp)
	assert.Equal(t, int64(3), rows[1].Timestamp)
}
