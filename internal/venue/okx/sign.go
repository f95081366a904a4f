package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"sort"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// newSignFunc builds the SignFunc for one set of OKX credentials. The
// prehash string is timestamp+method+requestPath+body (query string
// included in requestPath for GET), HMAC-SHA256'd with the API
// secret and base64-encoded into OK-ACCESS-SIGN, alongside the
// passphrase OKX's private endpoints require on every request.
func newSignFunc(apiKey, apiSecret, passphrase string) venue.SignFunc {
	return func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
		timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

		var body []byte
		var query string
		requestPath := path
		switch method {
		case "GET":
			if len(payload) > 0 {
				query = encodeQuerySorted(payload)
				requestPath += "?" + query
			}
		default:
			encoded, err := json.Marshal(payload)
			if err != nil {
				return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "okx", "failed to marshal request body")
			}
			body = encoded
		}

		prehash := timestamp + method + requestPath + string(body)
		mac := hmac.New(sha256.New, []byte(apiSecret))
		mac.Write([]byte(prehash))
		signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		headers := map[string]string{
			"OK-ACCESS-KEY":        apiKey,
			"OK-ACCESS-SIGN":       signature,
			"OK-ACCESS-TIMESTAMP":  timestamp,
			"OK-ACCESS-PASSPHRASE": passphrase,
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
