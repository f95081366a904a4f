// Package hyperliquid wires Hyperliquid's REST/WS surface to a
// venue.Port. Hyperliquid signs every action as an EIP-712 structured
// message rather than an HMAC header, and its private channels need
// no handshake beyond the subscribing user's address.
package hyperliquid

import "github.com/abdoElHodaky/perpcore/internal/model"

// sideConverter follows the wire's "isBuy"-style boolean convention,
// represented here as the single-letter B/A tokens the original
// client's wire builder used ("B" buy, "A" ask/sell).
var sideConverter = model.NewSideConverter(map[model.Side]string{
	model.SideBuy:  "B",
	model.SideSell: "A",
})

// orderTypeConverter maps LIMIT/MARKET to the wire's "isMarket"
// boolean strings and STOP_LIMIT/TAKE_PROFIT_LIMIT to the trigger
// kinds "sl"/"tp"; no isMarket value is set for the trigger kinds.
var orderTypeConverter = model.NewOrderTypeConverter(map[model.OrderType]string{
	model.OrderTypeLimit:           "false",
	model.OrderTypeMarket:          "true",
	model.OrderTypeStopLimit:       "sl",
	model.OrderTypeTakeProfitLimit: "tp",
})

var timeInForceConverter = model.NewTimeInForceConverter(map[model.TimeInForce]string{
	model.TimeInForceGTC:      "Gtc",
	model.TimeInForceFOK:      "Ioc",
	model.TimeInForcePostOnly: "Alo",
})

// positionDirectionConverter is unused by the position handler, which
// derives direction from sign(size) instead since Hyperliquid pushes
// no explicit side field — kept for interface parity with the other
// venue packages.
var positionDirectionConverter = model.NewPositionDirectionConverter(map[model.PositionDirection]string{
	model.PositionDirectionLong:  "",
	model.PositionDirectionShort: "",
})
