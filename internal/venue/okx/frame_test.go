package okx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameExtractsChannel(t *testing.T) {
	raw := []byte(`{"arg":{"channel":"books","instId":"BTC-USDT-SWAP"},"action":"update","data":[{}]}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, "books", frame.Topic)
}

func TestParseFrameIgnoresEventFrames(t *testing.T) {
	raw := []byte(`{"event":"login","code":"0"}`)

	frame, err := ParseFrame(raw)
	require.NoError(t, err)
	assert.Empty(t, frame.Topic)
}
