package binance

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ParseFrame unwraps Binance's combined-stream envelope
// ({"stream":"<topic>","data":{...}}) into a dispatch.Frame. Binance
// publishes no in-band snapshot marker on any of these streams, so
// every frame routes through Process; periodic drift correction comes
// from a separate REST poll feeding the same handlers' Refresh method.
func ParseFrame(raw []byte) (dispatch.Frame, error) {
	var envelope struct {
		Stream string          `json:"stream"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return dispatch.Frame{}, model.Wrap(err, model.ErrSchema, "binance", "failed to parse frame envelope")
	}
	if envelope.Stream == "" {
		return dispatch.Frame{}, nil
	}
	return dispatch.Frame{Topic: envelope.Stream, IsSnapshot: false, Payload: envelope.Data}, nil
}
