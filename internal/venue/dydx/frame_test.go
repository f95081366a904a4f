package dydx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameExtractsChannel(t *testing.T) {
	raw := []byte(`{"type":"channel_data","channel":"v4_orderbook","message_id":2,"contents":{}}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, "v4_orderbook", frame.Topic)
}

func TestParseFrameIgnoresConnectionFrames(t *testing.T) {
	raw := []byte(`{"type":"connected"}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Empty(t, frame.Topic)
}
