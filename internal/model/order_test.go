package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersUpsertKeysByOrderID(t *testing.T) {
	os := NewOrders()

	os.Upsert(Order{OrderID: "1", ClientOrderID: "c1", Price: 100})
	os.Upsert(Order{OrderID: "1", ClientOrderID: "c1", Price: 101})
	os.Upsert(Order{OrderID: "2", ClientOrderID: "c2", Price: 50})

	require.Len(t, os, 2)
	assert.Equal(t, 101.0, os["1"].Price)
}

func TestOrdersRemoveIsNoOpWhenAbsent(t *testing.T) {
	os := NewOrders()
	os.Upsert(Order{OrderID: "1"})

	os.Remove("missing")
	assert.Len(t, os, 1)

	os.Remove("1")
	assert.Empty(t, os)
}

func TestOrdersSliceAndRecordable(t *testing.T) {
	os := NewOrders()
	os.Upsert(Order{OrderID: "1", Symbol: "BTCUSDT", Price: 100})
	os.Upsert(Order{OrderID: "2", Symbol: "BTCUSDT", Price: 200})

	rows := os.Recordable()
	require.Len(t, rows, 2)
	prices := map[interface{}]bool{}
	for _, row := range rows {
		prices[row["price"]] = true
	}
	assert.True(t, prices[100.0])
	assert.True(t, prices[200.0])
}
