package bybit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Authenticator signs an in-band "op":"auth" frame over
// GET/realtime{expiry}, as Bybit's private websocket channel expects
// in place of a REST handshake.
type Authenticator struct {
	apiKey    string
	apiSecret string
}

// NewAuthenticator builds a bybit private-channel Authenticator.
func NewAuthenticator(apiKey, apiSecret string) *Authenticator {
	return &Authenticator{apiKey: apiKey, apiSecret: apiSecret}
}

// Authenticate sends the signed auth frame and does not wait for an
// ack; the ack arrives on the same stream as ordinary frames and is
// handled by the dispatcher's onUnknown path.
func (a *Authenticator) Authenticate(ctx context.Context, conn *websocket.Conn) error {
	expires := time.Now().Add(10*time.Second).UnixMilli()
	payload := fmt.Sprintf("GET/realtime%d", expires)

	mac := hmac.New(sha256.New, []byte(a.apiSecret))
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	frame := fmt.Sprintf(`{"op":"auth","args":["%s",%d,"%s"]}`, a.apiKey, expires, signature)
	return conn.WriteMessage(websocket.TextMessage, []byte(frame))
}
