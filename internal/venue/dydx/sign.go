package dydx

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
)

// newSignFunc builds the SignFunc for one dYdX account address. The
// indexer's read endpoints are unauthenticated; order placement is
// normally signed as a chain transaction by a node-client wallet
// rather than an HTTP request signature. This adapter keeps the
// venue.Port contract uniform across venues by attaching the address
// to every payload so the REST layer has something to key order
// lookups on, and stamping the method/path through untouched — there
// is no HMAC/EIP-712 step for the indexer surface itself.
func newSignFunc(address string) venue.SignFunc {
	return func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
		if payload == nil {
			return venue.SignedRequest{}, nil
		}
		signedPayload := make(map[string]interface{}, len(payload)+1)
		for k, v := range payload {
			signedPayload[k] = v
		}
		signedPayload["address"] = address

		if method == "GET" {
			return venue.SignedRequest{Query: encodeQuery(signedPayload)}, nil
		}

		body, err := json.Marshal(signedPayload)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "dydx", "failed to marshal payload")
		}
		return venue.SignedRequest{Body: body}, nil
	}
}

// encodeQuery url-encodes payload's values for a GET request. The
// indexer's read endpoints are unauthenticated, so there is no
// signature to keep the encoding stable against — plain insertion via
// url.Values is enough to get symbol/address filters onto the wire.
func encodeQuery(payload map[string]interface{}) string {
	values := url.Values{}
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			values.Set(k, val)
		default:
			b, _ := json.Marshal(val)
			values.Set(k, string(b))
		}
	}
	return values.Encode()
}
