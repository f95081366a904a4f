package bybit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameExtractsTopic(t *testing.T) {
	raw := []byte(`{"topic":"orderbook.50.BTCUSDT","type":"delta","data":{"u":2}}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, "orderbook.50.BTCUSDT", frame.Topic)
	assert.Equal(t, raw, []byte(frame.Payload))
}

func TestParseFrameIgnoresControlFrames(t *testing.T) {
	raw := []byte(`{"success":true,"op":"auth"}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Empty(t, frame.Topic)
}
