package dydx

import (
	"encoding/json"
	"fmt"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

// indexerErrorResponse mirrors the dYdX v4 indexer's {"errors":[...]}
// error body shape.
type indexerErrorResponse struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// classifyError maps the indexer's HTTP status onto a CoreError. The
// indexer does not carry a numeric error-code table the way
// Bybit/Binance do; classification falls back to status-code
// buckets, with 429 and 5xx treated as retryable.
func classifyError(statusCode int, body []byte) *model.CoreError {
	var resp indexerErrorResponse
	message := fmt.Sprintf("http %d", statusCode)
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Errors) > 0 {
		message = resp.Errors[0].Msg
	}

	switch {
	case statusCode == 429:
		return model.New(model.ErrRateLimited, "dydx", message)
	case statusCode >= 500:
		return model.New(model.ErrTransport, "dydx", message)
	case statusCode == 401 || statusCode == 403:
		return model.New(model.ErrAuthExpired, "dydx", message)
	default:
		return model.New(model.ErrVenueFatal, "dydx", message)
	}
}
