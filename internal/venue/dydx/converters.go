// Package dydx wires dYdX v4's indexer REST/WS surface to a
// venue.Port. dYdX has no HMAC handshake: the private channel is
// keyed purely by the account's on-chain address. Order calls go out
// as plain REST calls to the routes in endpoints.go with the address
// attached by the signing function; no chain transaction is built or
// signed.
package dydx

import "github.com/abdoElHodaky/perpcore/internal/model"

var sideConverter = model.NewSideConverter(map[model.Side]string{
	model.SideBuy:  "BUY",
	model.SideSell: "SELL",
})

var orderTypeConverter = model.NewOrderTypeConverter(map[model.OrderType]string{
	model.OrderTypeLimit:           "LIMIT",
	model.OrderTypeMarket:          "MARKET",
	model.OrderTypeStopLimit:       "STOP_LIMIT",
	model.OrderTypeTakeProfitLimit: "TAKE_PROFIT_LIMIT",
})

var timeInForceConverter = model.NewTimeInForceConverter(map[model.TimeInForce]string{
	model.TimeInForceGTC:      "GTT",
	model.TimeInForceFOK:      "FOK",
	model.TimeInForcePostOnly: "POST_ONLY",
})

var positionDirectionConverter = model.NewPositionDirectionConverter(map[model.PositionDirection]string{
	model.PositionDirectionLong:  "LONG",
	model.PositionDirectionShort: "SHORT",
})
