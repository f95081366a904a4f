package orderbook

import (
	"testing"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshThenDeltaMerge(t *testing.T) {
	b := New(10)

	b.Refresh(
		[]Level{{Price: 101, Size: 2}, {Price: 102, Size: 3}},
		[]Level{{Price: 100, Size: 2}, {Price: 99, Size: 3}},
		1,
	)

	require.Equal(t, int64(1), b.SeqID())
	assert.Equal(t, 100.5, b.Mid()) // best bid 100, best ask 101 -> mid 100.5

	b.UpdateBids([]Level{{Price: 100, Size: 0}}, 2)
	rows := b.Recordable()["bids"].([]Level)
	require.Len(t, rows, 1)
	assert.Equal(t, 99.0, rows[0].Price)
}

func TestStaleDeltaIsDropped(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 101, Size: 1}},
		[]Level{{Price: 100, Size: 1}},
		5,
	)

	b.UpdateBids([]Level{{Price: 50, Size: 1}}, 3)

	require.Equal(t, int64(5), b.SeqID())
	rows := b.Recordable()["bids"].([]Level)
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].Price)
}

func TestVAMPPartialFillOnCrossingLevel(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 101, Size: 2}, {Price: 102, Size: 3}},
		[]Level{{Price: 100, Size: 2}, {Price: 99, Size: 3}},
		1,
	)

	assert.InDelta(t, 100.5, b.VAMP(4), 1e-9)
}

func TestMidAndSpread(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 101, Size: 1}},
		[]Level{{Price: 99, Size: 1}},
		1,
	)

	assert.Equal(t, 100.0, b.Mid())
	assert.Equal(t, 2.0, b.Spread())
}

func TestWMidLiesBetweenBestBidAndAsk(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 101, Size: 1}},
		[]Level{{Price: 99, Size: 3}},
		1,
	)

	wmid := b.WMid()
	assert.GreaterOrEqual(t, wmid, 99.0)
	assert.LessOrEqual(t, wmid, 101.0)
}

func TestSlippageCappedAtMid(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 1000, Size: 0.01}},
		[]Level{{Price: 1, Size: 0.01}},
		1,
	)

	slip := b.Slippage(model.SideBuy, 10)
	assert.LessOrEqual(t, slip, b.Mid())
}

func TestEmptyDeltaIsNoOp(t *testing.T) {
	b := New(10)
	b.Refresh(
		[]Level{{Price: 101, Size: 1}},
		[]Level{{Price: 99, Size: 1}},
		1,
	)

	b.UpdateAsks(nil, 2)
	require.Equal(t, int64(1), b.SeqID())
}
