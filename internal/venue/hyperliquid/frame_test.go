package hyperliquid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameExtractsChannel(t *testing.T) {
	raw := []byte(`{"channel":"l2Book","data":{"time":123,"levels":[[],[]]}}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, "l2Book", frame.Topic)
}

func TestParseFrameIgnoresFramesWithNoChannel(t *testing.T) {
	raw := []byte(`{"data":{}}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Empty(t, frame.Topic)
}
