package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// newSignFunc builds the SignFunc for one set of Binance credentials.
// GET/DELETE calls carry their parameters (and the signature) in the
// URL query string, matching Binance's own convention — this is also
// how a plain unsigned call like getOrderbook gets its symbol onto
// the wire at all. POST/PUT calls sign the JSON body itself and
// append the signature as a field of that same body.
func newSignFunc(apiKey, apiSecret string) venue.SignFunc {
	return func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
		if method == "GET" || method == "DELETE" {
			query := encodeQuerySorted(payload)

			mac := hmac.New(sha256.New, []byte(apiSecret))
			mac.Write([]byte(query))
			signature := hex.EncodeToString(mac.Sum(nil))

			if query != "" {
				query += "&"
			}
			query += "signature=" + signature

			return venue.SignedRequest{
				Headers: map[string]string{"X-MBX-APIKEY": apiKey},
				Query:   query,
			}, nil
		}

		signedPayload := make(map[string]interface{}, len(payload)+1)
		for k, v := range payload {
			signedPayload[k] = v
		}

		msg, err := json.Marshal(signedPayload)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "binance", "failed to marshal payload for signing")
		}

		mac := hmac.New(sha256.New, []byte(apiSecret))
		mac.Write(msg)
		signedPayload["signature"] = hex.EncodeToString(mac.Sum(nil))

		body, err := json.Marshal(signedPayload)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "binance", "failed to marshal signed body")
		}

		return venue.SignedRequest{
			Headers: map[string]string{"X-MBX-APIKEY": apiKey},
			Body:    body,
		}, nil
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
