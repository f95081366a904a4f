package model

// Order is the canonical representation of a single order, immutable
// once constructed. Venue adapters decode wire payloads into Order;
// nothing downstream touches venue-specific field names again.
type Order struct {
	Symbol        string
	Side          Side
	OrderType     OrderType
	TimeInForce   TimeInForce
	Size          float64
	Price         float64
	OrderID       string
	ClientOrderID string
}

// NewOrder builds an Order. Kept as a constructor rather than a bare
// struct literal so call sites read the same way across venues.
func NewOrder(symbol string, side Side, orderType OrderType, tif TimeInForce, size, price float64, orderID, clientOrderID string) Order {
	return Order{
		Symbol:        symbol,
		Side:          side,
		OrderType:     orderType,
		TimeInForce:   tif,
		Size:          size,
		Price:         price,
		OrderID:       orderID,
		ClientOrderID: clientOrderID,
	}
}

// Equal compares two orders field by field.
func (o Order) Equal(other Order) bool {
	return o.Symbol == other.Symbol &&
		o.Side == other.Side &&
		o.OrderType == other.OrderType &&
		o.TimeInForce == other.TimeInForce &&
		o.Size == other.Size &&
		o.Price == other.Price &&
		o.OrderID == other.OrderID &&
		o.ClientOrderID == other.ClientOrderID
}

// ToMap renders the order as a plain map, used when logging or when a
// venue client needs a generic payload shape to sign.
func (o Order) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"symbol":          o.Symbol,
		"side":            o.Side,
		"order_type":      o.OrderType,
		"time_in_force":   o.TimeInForce,
		"size":            o.Size,
		"price":           o.Price,
		"order_id":        o.OrderID,
		"client_order_id": o.ClientOrderID,
	}
}

// Orders is the venue-order-id keyed collection of live orders owned
// by a single venue session's order stream handler: populated on
// "new"/"partially filled" and pruned on any terminal status. Every
// venue package's ordersHandler stores its live state in one of
// these rather than a bare map, so the overwrite/remove lifecycle
// rule lives in one place instead of five near-identical copies.
type Orders map[string]Order

// NewOrders returns an empty order collection.
func NewOrders() Orders {
	return make(Orders)
}

// Upsert inserts or replaces an order by OrderID.
func (os Orders) Upsert(o Order) {
	os[o.OrderID] = o
}

// Remove deletes an order by OrderID. No-op if absent.
func (os Orders) Remove(orderID string) {
	delete(os, orderID)
}

// Slice returns the live orders as a plain slice, stable iteration
// order not guaranteed.
func (os Orders) Slice() []Order {
	out := make([]Order, 0, len(os))
	for _, o := range os {
		out = append(out, o)
	}
	return out
}

// Recordable renders the collection as a list of order dicts, the
// projection a snapshot sink would serialize.
func (os Orders) Recordable() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(os))
	for _, o := range os.Slice() {
		out = append(out, o.ToMap())
	}
	return out
}
