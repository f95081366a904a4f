package okx

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ParseFrame extracts the channel name from OKX's
// {"arg":{"channel":"...","instId":"..."},"data":[...]} envelope as
// the dispatch topic, passing the raw frame through unaltered since
// every handler's Process reads its own "action"/"data" fields off
// the same envelope. Event frames (login ack, subscribe ack, error)
// carry no "arg" and route through onUnknown.
func ParseFrame(raw []byte) (dispatch.Frame, error) {
	var envelope struct {
		Arg struct {
			Channel string `json:"channel"`
		} `json:"arg"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return dispatch.Frame{}, model.Wrap(err, model.ErrSchema, "okx", "failed to parse frame envelope")
	}
	if envelope.Arg.Channel == "" {
		return dispatch.Frame{}, nil
	}
	return dispatch.Frame{Topic: envelope.Arg.Channel, IsSnapshot: false, Payload: raw}, nil
}
