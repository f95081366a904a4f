package okx

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/model"
)

type errorEntry struct {
	retryable bool
	message   string
}

// errorTable mirrors a subset of OKX's top-level "code" -> (retryable,
// message) mapping. Unknown codes default to venue-fatal with the raw
// message.
var errorTable = map[string]errorEntry{
	"0":     {false, ""},
	"1":     {false, "operation failed"},
	"50011": {true, "rate limit reached"},
	"50013": {true, "system busy, try again"},
	"50004": {true, "endpoint request timeout"},
	"51008": {false, "order placement failed due to insufficient balance"},
	"51400": {false, "order does not exist"},
	"50114": {false, "invalid sign"},
	"50102": {false, "timestamp request expired"},
}

type codeResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// classifyError decodes OKX's {"code","msg"} envelope and maps it
// through errorTable. A non-2xx HTTP status with an undecodable body
// is treated as a transport error rather than a venue error.
func classifyError(statusCode int, body []byte) *model.CoreError {
	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Newf(model.ErrTransport, "okx", "http %d, undecodable body", statusCode)
	}

	entry, known := errorTable[resp.Code]
	if !known {
		return model.Newf(model.ErrVenueFatal, "okx", "unknown error code %s: %s", resp.Code, resp.Msg)
	}
	if entry.retryable {
		return model.New(model.ErrTransport, "okx", entry.message)
	}
	if resp.Code == "50114" || resp.Code == "50102" {
		return model.New(model.ErrAuthExpired, "okx", entry.message)
	}
	return model.New(model.ErrVenueFatal, "okx", entry.message)
}
