package dydx

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ParseFrame extracts the channel name from the v4 indexer socket's
// envelope ({"type":"subscribed"|"channel_data", "channel":"...",
// "contents":{...}}) as the dispatch topic, passing the raw frame
// through unaltered since every handler's Process reads its own
// "message_id"/"contents" fields off the same envelope. Connection
// control frames ("type":"connected", "type":"error") carry no
// channel and route through onUnknown.
func ParseFrame(raw []byte) (dispatch.Frame, error) {
	var envelope struct {
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return dispatch.Frame{}, model.Wrap(err, model.ErrSchema, "dydx", "failed to parse frame envelope")
	}
	if envelope.Channel == "" {
		return dispatch.Frame{}, nil
	}
	return dispatch.Frame{Topic: envelope.Channel, IsSnapshot: false, Payload: raw}, nil
}
