package hyperliquid

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

// phantomAgentTypedData builds the EIP-712 "Agent" structured message
// Hyperliquid expects every exchange action signed under: the action
// hash becomes the agent's connectionId, with a fixed domain that
// does not correspond to any real verifying contract (Hyperliquid's
// own convention, not a generic EIP-712 app).
func phantomAgentTypedData(connectionID [32]byte, isMainnet bool) apitypes.TypedData {
	source := "b"
	if isMainnet {
		source = "a"
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": connectionID[:],
		},
	}
}

// actionHash packs action via msgpack (Hyperliquid's own wire
// encoding, not JSON) and appends the big-endian nonce and a null
// vault-address byte, then keccak256-hashes the result — this is the
// connectionId the phantom agent message signs over.
func actionHash(action map[string]interface{}, nonce int64) ([32]byte, error) {
	packed, err := msgpack.Marshal(action)
	if err != nil {
		return [32]byte{}, err
	}
	nonceBytes := big.NewInt(nonce).FillBytes(make([]byte, 8))
	packed = append(packed, nonceBytes...)
	packed = append(packed, 0x00) // no vault address
	return crypto.Keccak256Hash(packed), nil
}

// newSignFunc builds the SignFunc for one Hyperliquid wallet. method
// is unused beyond satisfying venue.SignFunc's shape — every
// Hyperliquid call is a POST. Calls to /info send the payload as an
// unsigned JSON body; every other path gets the signature inside the
// JSON body, never a header.
func newSignFunc(privateKey *ecdsa.PrivateKey, isMainnet bool) venue.SignFunc {
	return func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
		if path == "/info" {
			body, err := json.Marshal(payload)
			if err != nil {
				return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "hyperliquid", "failed to marshal info payload")
			}
			return venue.SignedRequest{Body: body}, nil
		}

		action, _ := payload["action"].(map[string]interface{})
		if action == nil {
			action = payload
		}
		nonce := time.Now().UnixMilli()

		hash, err := actionHash(action, nonce)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "hyperliquid", "failed to hash action")
		}

		typedData := phantomAgentTypedData(hash, isMainnet)
		digest, _, err := apitypes.TypedDataAndHash(typedData)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "hyperliquid", "failed to build EIP-712 digest")
		}

		sig, err := crypto.Sign(digest, privateKey)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "hyperliquid", "failed to sign action")
		}

		signedPayload := map[string]interface{}{
			"action": action,
			"nonce":  nonce,
			"signature": map[string]interface{}{
				"r": fmt.Sprintf("0x%x", sig[:32]),
				"s": fmt.Sprintf("0x%x", sig[32:64]),
				"v": sig[64] + 27,
			},
		}
		if vaultAddress, ok := payload["vaultAddress"]; ok {
			signedPayload["vaultAddress"] = vaultAddress
		}

		body, err := json.Marshal(signedPayload)
		if err != nil {
			return venue.SignedRequest{}, model.Wrap(err, model.ErrValidation, "hyperliquid", "failed to marshal signed body")
		}
		return venue.SignedRequest{Body: body}, nil
	}
}
