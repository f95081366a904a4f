// Package okx wires OKX USDT-margined perpetual swaps' REST/WS
// surface to a venue.Port. OKX signs every private request with a
// passphrase-scoped HMAC rather than a plain API-secret HMAC.
package okx

import "github.com/abdoElHodaky/perpcore/internal/model"

var sideConverter = model.NewSideConverter(map[model.Side]string{
	model.SideBuy:  "buy",
	model.SideSell: "sell",
})

// orderTypeConverter only maps LIMIT/MARKET; OKX's STOP_LIMIT/
// TAKE_PROFIT_LIMIT order kinds go through the separate algo-order
// endpoints this port does not implement, so both convert to an empty
// ordType rather than a guessed string.
var orderTypeConverter = model.NewOrderTypeConverter(map[model.OrderType]string{
	model.OrderTypeLimit:           "limit",
	model.OrderTypeMarket:          "market",
	model.OrderTypeStopLimit:       "",
	model.OrderTypeTakeProfitLimit: "",
})

// timeInForceConverter maps GTC to OKX's "market" ordType: sending a
// plain non-post-only maker order is uncommon on this venue, so GTC
// here really means "let it take" rather than a passive limit.
var timeInForceConverter = model.NewTimeInForceConverter(map[model.TimeInForce]string{
	model.TimeInForceGTC:      "market",
	model.TimeInForceFOK:      "fok",
	model.TimeInForcePostOnly: "post_only",
})

var positionDirectionConverter = model.NewPositionDirectionConverter(map[model.PositionDirection]string{
	model.PositionDirectionLong:  "long",
	model.PositionDirectionShort: "short",
})
