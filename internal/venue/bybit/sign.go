package bybit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// defaultRecvWindowMs is used when a SessionConfig leaves RecvWindowMs
// unset (applySessionDefaults normally fills this in first).
const defaultRecvWindowMs = 1000

// newSignFunc builds the SignFunc for one set of Bybit credentials.
// The signature covers timestamp+apiKey+recvWindow followed by the
// urlencoded GET params or the raw JSON POST body, HMAC-SHA256'd with
// the API secret and placed in X-BAPI-SIGN. recvWindowMs is the
// configured recv-window (spec §6); a value of 0 falls back to
// defaultRecvWindowMs.
func newSignFunc(apiKey, apiSecret string, recvWindowMs int) venue.SignFunc {
	if recvWindowMs == 0 {
		recvWindowMs = defaultRecvWindowMs
	}
	return func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
		timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
		recvWindow := strconv.Itoa(recvWindowMs)

		var query string
		paramStr := timestamp + apiKey + recvWindow
		switch method {
		case "GET":
			query = encodeQuerySorted(payload)
			paramStr += query
		case "POST":
			body, err := json.Marshal(payload)
			if err != nil {
				return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "bybit", "failed to marshal payload for signing")
			}
			paramStr += string(body)
		default:
			return venue.SignedRequest{}, model.New(model.ErrValidation, "bybit", "invalid method for signing: "+method)
		}

		mac := hmac.New(sha256.New, []byte(apiSecret))
		mac.Write([]byte(paramStr))
		signature := hex.EncodeToString(mac.Sum(nil))

		headers := map[string]string{
			"X-BAPI-API-KEY":     apiKey,
			"X-BAPI-TIMESTAMP":   timestamp,
			"X-BAPI-SIGN":        signature,
			"X-BAPI-RECV-WINDOW": recvWindow,
		}

		var body []byte
		if method == "POST" {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "bybit", "failed to marshal request body")
			}
			body = encoded
		}

		return venue.SignedRequest{Headers: headers, Body: body, Query: query}, nil
	}
}

func encodeQuerySorted(payload map[string]interface{}) string {
	values := url.Values{}
	for k, v := range payload {
		values.Set(k, toQueryString(v))
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	encoded := url.Values{}
	for _, k := range keys {
		encoded.Set(k, values.Get(k))
	}
	return encoded.Encode()
}

func toQueryString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}
