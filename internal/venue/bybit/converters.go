// Package bybit wires Bybit's v5 linear-perpetual REST/WS surface to
// a venue.Port.
package bybit

import "github.com/abdoElHodaky/perpcore/internal/model"

var sideConverter = model.NewSideConverter(map[model.Side]string{
	model.SideBuy:  "Buy",
	model.SideSell: "Sell",
})

var orderTypeConverter = model.NewOrderTypeConverter(map[model.OrderType]string{
	model.OrderTypeLimit:  "Limit",
	model.OrderTypeMarket: "Market",
})

var timeInForceConverter = model.NewTimeInForceConverter(map[model.TimeInForce]string{
	model.TimeInForceGTC:      "GTC",
	model.TimeInForceFOK:      "FOK",
	model.TimeInForcePostOnly: "PostOnly",
})

var positionDirectionConverter = model.NewPositionDirectionConverter(map[model.PositionDirection]string{
	model.PositionDirectionLong:  "Buy",
	model.PositionDirectionShort: "Sell",
})
