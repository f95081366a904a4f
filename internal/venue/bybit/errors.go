package bybit

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

type errorEntry struct {
	retryable bool
	message   string
}

// errorTable mirrors Bybit's retCode -> (retryable, message) mapping.
// Unknown codes default to venue-fatal with the raw message.
var errorTable = map[int]errorEntry{
	0:      {false, ""},
	200:    {false, ""},
	10001:  {false, "Illegal category"},
	10006:  {false, "Rate limits exceeded!"},
	10016:  {true, "Bybit server error..."},
	10010:  {false, "Unmatched IP, check your API key's bound IP addresses."},
	110001: {false, "Order doesn't exist anymore!"},
	110012: {false, "Insufficient available balance"},
}

type retCodeResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
}

// classifyError decodes a Bybit response body's retCode and maps it
// through errorTable. A non-2xx HTTP status with an undecodable body
// is treated as a transport error rather than a venue error.
func classifyError(statusCode int, body []byte) *model.CoreError {
	var resp retCodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Newf(model.ErrTransport, "bybit", "http %d, undecodable body", statusCode)
	}

	if resp.RetCode == 10006 {
		return model.New(model.ErrRateLimited, "bybit", errorTable[resp.RetCode].message)
	}

	entry, known := errorTable[resp.RetCode]
	if !known {
		return model.Newf(model.ErrVenueFatal, "bybit", "unknown error code %d: %s", resp.RetCode, resp.RetMsg)
	}
	if entry.retryable {
		return model.New(model.ErrTransport, "bybit", entry.message)
	}
	return model.New(model.ErrVenueFatal, "bybit", entry.message)
}
