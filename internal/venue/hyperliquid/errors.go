package hyperliquid

import (
	"encoding/json"
	"strings"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

// exchangeErrorResponse mirrors Hyperliquid's {"status":"err",
// "response": "<message>"} error body.
type exchangeErrorResponse struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// classifyError maps a non-2xx or status:err Hyperliquid response
// onto a CoreError. Hyperliquid has no numeric error-code table; the
// response string is pattern-matched for the classes the docs call
// out as retryable.
func classifyError(statusCode int, body []byte) *model.CoreError {
	var resp exchangeErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Newf(model.ErrTransport, "hyperliquid", "http %d, undecodable body", statusCode)
	}

	msg := strings.ToLower(resp.Response)
	switch {
	case statusCode == 429 || strings.Contains(msg, "rate limit"):
		return model.New(model.ErrRateLimited, "hyperliquid", resp.Response)
	case statusCode >= 500 || strings.Contains(msg, "timeout"):
		return model.New(model.ErrTransport, "hyperliquid", resp.Response)
	default:
		return model.New(model.ErrVenueFatal, "hyperliquid", resp.Response)
	}
}
