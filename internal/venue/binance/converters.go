// Package binance wires Binance USD-M futures' REST/WS surface to a
// venue.Port.
package binance

import "github.com/abdoElHodaky/perpcore/internal/model"

var sideConverter = model.NewSideConverter(map[model.Side]string{
	model.SideBuy:  "BUY",
	model.SideSell: "SELL",
})

var orderTypeConverter = model.NewOrderTypeConverter(map[model.OrderType]string{
	model.OrderTypeLimit:            "LIMIT",
	model.OrderTypeMarket:           "MARKET",
	model.OrderTypeStopLimit:        "STOP",
	model.OrderTypeTakeProfitLimit:  "TAKE_PROFIT",
})

var timeInForceConverter = model.NewTimeInForceConverter(map[model.TimeInForce]string{
	model.TimeInForceGTC:      "GTC",
	model.TimeInForceFOK:      "FOK",
	model.TimeInForcePostOnly: "GTX",
})

var positionDirectionConverter = model.NewPositionDirectionConverter(map[model.PositionDirection]string{
	model.PositionDirectionLong:  "LONG",
	model.PositionDirectionShort: "SHORT",
})
