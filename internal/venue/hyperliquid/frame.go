package hyperliquid

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ParseFrame extracts the channel name from Hyperliquid's
// {"channel":"...","data":{...}} envelope as the dispatch topic,
// passing the raw frame through unaltered since every handler's
// Process reads its own "data" field off the same envelope.
// Subscription/pong acks carry no recognized channel and route
// through onUnknown.
func ParseFrame(raw []byte) (dispatch.Frame, error) {
	var envelope struct {
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return dispatch.Frame{}, model.Wrap(err, model.ErrSchema, "hyperliquid", "failed to parse frame envelope")
	}
	if envelope.Channel == "" {
		return dispatch.Frame{}, nil
	}
	return dispatch.Frame{Topic: envelope.Channel, IsSnapshot: false, Payload: raw}, nil
}
