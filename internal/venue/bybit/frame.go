package bybit

import (
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
)

// ParseFrame extracts the topic from Bybit's v5 envelope
// ({"topic":"...", ...}) and passes the raw frame through unaltered,
// since every handler's Process method reads its own "type"/"data"
// fields off the same envelope. Frames with no topic (auth acks,
// pong) route through onUnknown instead.
func ParseFrame(raw []byte) (dispatch.Frame, error) {
	var envelope struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return dispatch.Frame{}, model.Wrap(err, model.ErrSchema, "bybit", "failed to parse frame envelope")
	}
	if envelope.Topic == "" {
		return dispatch.Frame{}, nil
	}
	return dispatch.Frame{Topic: envelope.Topic, IsSnapshot: false, Payload: raw}, nil
}
