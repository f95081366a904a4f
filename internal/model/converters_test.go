package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrNumConverterRoundTrips(t *testing.T) {
	c := NewStrNumConverter(map[int]string{0: "Buy", 1: "Sell"})

	assert.Equal(t, "Buy", c.ToStr(0))
	assert.Equal(t, 0, c.ToNum("Buy"))
	assert.Equal(t, "Sell", c.ToStr(1))
	assert.Equal(t, 1, c.ToNum("Sell"))
}

func TestStrNumConverterUnknownFallsBack(t *testing.T) {
	c := NewStrNumConverter(map[int]string{0: "Buy"})

	assert.Equal(t, UnknownStr, c.ToStr(99))
	assert.Equal(t, UnknownNum, c.ToNum("nonsense"))
}

func TestSideConverterRoundTrip(t *testing.T) {
	c := NewSideConverter(map[Side]string{SideBuy: "Buy", SideSell: "Sell"})

	for _, side := range []Side{SideBuy, SideSell} {
		str := c.ToStr(side)
		assert.Equal(t, side, c.ToNum(str))
	}
	assert.Equal(t, UnknownStr, c.ToStr(Side(99)))
	assert.Equal(t, Side(UnknownNum), c.ToNum("garbage"))
}

func TestOrderTypeConverterRoundTrip(t *testing.T) {
	c := NewOrderTypeConverter(map[OrderType]string{
		OrderTypeLimit:  "Limit",
		OrderTypeMarket: "Market",
	})

	assert.Equal(t, OrderTypeLimit, c.ToNum(c.ToStr(OrderTypeLimit)))
	assert.Equal(t, OrderTypeMarket, c.ToNum(c.ToStr(OrderTypeMarket)))
	assert.Equal(t, OrderType(UnknownNum), c.ToNum("unrecognized"))
}

func TestPositionDirectionConverterRoundTrip(t *testing.T) {
	c := NewPositionDirectionConverter(map[PositionDirection]string{
		PositionDirectionLong:  "Buy",
		PositionDirectionShort: "Sell",
	})

	assert.Equal(t, PositionDirectionLong, c.ToNum(c.ToStr(PositionDirectionLong)))
	assert.Equal(t, UnknownStr, c.ToStr(PositionDirection(99)))
}
