package binance

import (
	"encoding/json"
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

type errorEntry struct {
	retryable bool
	message   string
}

// errorTable mirrors Binance futures' numeric error code -> message
// table. Rate-limit codes are classified separately below regardless
// of their retryable flag here, since they need their own CoreError
// kind rather than plain transport/venue-fatal.
var errorTable = map[int]errorEntry{
	0:    {false, ""},
	200:  {false, ""},
	1003: {false, "Rate limits exceeded!"},
	1015: {false, "Rate limits exceeded!"},
	1008: {true, "Server overloaded..."},
	1021: {true, "Out of recvWindow..."},
	1111: {false, "Incorrect tick/lot size..."},
	4029: {false, "Incorrect tick/lot size..."},
	4030: {false, "Incorrect tick/lot size..."},
	1125: {false, "Invalid listen key..."},
	2010: {false, "Order create rejected..."},
	2011: {false, "Order cancel rejected..."},
	2012: {false, "Order cancel all rejected..."},
	2013: {false, "Order does not exist..."},
	2014: {false, "Invalid API key format"},
	2018: {false, "Insufficient balance..."},
	3000: {true, "System busy. Please try again later."},
	3001: {false, "Trading is suspended for this symbol."},
	3002: {false, "Order has been filled or canceled."},
	3003: {false, "Order was not found."},
	3004: {false, "Insufficient funds in your account."},
}

var rateLimitedCodes = map[int]bool{1003: true, 1015: true}
var authExpiredCodes = map[int]bool{1125: true}

type codeResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// classifyError decodes Binance's {code,msg} error body.
func classifyError(statusCode int, body []byte) *model.CoreError {
	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Newf(model.ErrTransport, "binance", "http %d, undecodable body", statusCode)
	}

	if rateLimitedCodes[resp.Code] {
		return model.New(model.ErrRateLimited, "binance", errorTable[resp.Code].message)
	}
	if authExpiredCodes[resp.Code] {
		return model.New(model.ErrAuthExpired, "binance", errorTable[resp.Code].message)
	}

	entry, known := errorTable[resp.Code]
	if !known {
		return model.New(model.ErrVenueFatal, "binance", fmt.Sprintf("unknown error code %d: %s", resp.Code, resp.Msg))
	}
	if entry.retryable {
		return model.New(model.ErrTransport, "binance", entry.message)
	}
	return model.New(model.ErrVenueFatal, "binance", entry.message)
}
