package binance

import (
	"context"
	"encoding/json"

	"github.com/abdoElHodaky/perpcore/internal/httpclient"
)

// ListenKeyManager obtains and refreshes a Binance user-data-stream
// listen key. Unlike Bybit's in-band auth frame, Binance authenticates
// the private channel purely by URL: the listen key is appended as a
// path suffix on connect and kept alive with a periodic REST PUT.
type ListenKeyManager struct {
	client *httpclient.Client
}

// NewListenKeyManager wraps a REST client for listen-key management.
func NewListenKeyManager(client *httpclient.Client) *ListenKeyManager {
	return &ListenKeyManager{client: client}
}

// Obtain requests a fresh listen key.
func (m *ListenKeyManager) Obtain(ctx context.Context) (string, error) {
	body, err := m.client.Do(ctx, "listenKey", nil)
	if err != nil {
		return "", err
	}
	return extractListenKey(body)
}

// Ping extends the current listen key's expiry by another 60 minutes.
func (m *ListenKeyManager) Ping(ctx context.Context) error {
	_, err := m.client.Do(ctx, "pingListenKey", nil)
	return err
}

func extractListenKey(body []byte) (string, error) {
	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	return resp.ListenKey, nil
}
