package oms

import (
	"context"
	"sync"
	"testing"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClient struct {
	mu       sync.Mutex
	created  []model.Order
	canceled []model.Order
	canceledAllSymbols []string
}

func (f *fakeClient) CreateOrder(ctx context.Context, order model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, order)
	return nil
}

func (f *fakeClient) CancelOrder(ctx context.Context, order model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, order)
	return nil
}

func (f *fakeClient) CancelAllOrders(ctx context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceledAllSymbols = append(f.canceledAllSymbols, symbol)
	return nil
}

func newTestBook(t *testing.T, bid, ask float64) *orderbook.Book {
	t.Helper()
	b := orderbook.New(10)
	b.Refresh(
		[]orderbook.Level{{Price: ask, Size: 1}},
		[]orderbook.Level{{Price: bid, Size: 1}},
		1,
	)
	return b
}

func TestUpdateFirstCallCreatesAllNoCancels(t *testing.T) {
	client := &fakeClient{}
	book := newTestBook(t, 100, 100)
	logger := zaptest.NewLogger(t)

	o, err := New("BTC-PERP", 10, 0, client, book, func() []model.Order { return nil }, logger, 4)
	require.NoError(t, err)
	defer o.Close()

	orders := []model.Order{
		model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 99, "", "b01"),
		model.NewOrder("BTC-PERP", model.SideSell, model.OrderTypeLimit, model.TimeInForceGTC, 1, 101, "", "s01"),
	}

	require.NoError(t, o.Update(context.Background(), orders))

	assert.Len(t, client.created, 2)
	assert.Empty(t, client.canceled)
}

func TestUpdateReplacesOutOfBoundsOrder(t *testing.T) {
	client := &fakeClient{}
	book := newTestBook(t, 100, 100) // mid = 100

	live := []model.Order{
		model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 100, "oldid", "b01"),
	}

	logger := zaptest.NewLogger(t)
	o, err := New("BTC-PERP", 10, 0.10, client, book, func() []model.Order { return live }, logger, 4)
	require.NoError(t, err)
	defer o.Close()

	// Prime hadPrevIntended so this call takes the diff path.
	require.NoError(t, o.Update(context.Background(), live))
	client.created = nil

	newIntended := model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 100.01, "", "b01")
	require.NoError(t, o.Update(context.Background(), []model.Order{newIntended}))

	assert.Len(t, client.canceled, 1)
	assert.Equal(t, "oldid", client.canceled[0].OrderID)
	assert.Len(t, client.created, 1)
	assert.Equal(t, 100.01, client.created[0].Price)
}

func TestIsOutOfBoundsZeroDistanceAnyDriftTrips(t *testing.T) {
	old := model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 100, "", "b01")
	fresh := model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 100.01, "", "b01")

	assert.True(t, isOutOfBounds(old, fresh, 100, 0.10))
}

func TestUpdateSimpleCancelsAllAndRecreates(t *testing.T) {
	client := &fakeClient{}
	book := newTestBook(t, 100, 100)
	logger := zaptest.NewLogger(t)

	o, err := New("BTC-PERP", 10, 0, client, book, func() []model.Order { return nil }, logger, 4)
	require.NoError(t, err)
	defer o.Close()

	orders := []model.Order{
		model.NewOrder("BTC-PERP", model.SideBuy, model.OrderTypeLimit, model.TimeInForceGTC, 1, 99, "", "b01"),
	}
	require.NoError(t, o.UpdateSimple(context.Background(), orders))

	assert.Equal(t, []string{"BTC-PERP"}, client.canceledAllSymbols)
	assert.Len(t, client.created, 1)
}
