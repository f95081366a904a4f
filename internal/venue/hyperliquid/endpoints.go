package hyperliquid

import "github.com/abdoElHodaky/perpcore/internal/model"

const (
	restBaseURL = "https://api.hyperliquid.xyz"
	wsBaseURL   = "wss://api.hyperliquid.xyz/ws"
)

// buildEndpoints mirrors Hyperliquid's two-route REST surface: every
// write goes through POST /exchange with an action discriminator in
// the signed body, every read through POST /info with a type field.
// Per-operation names are kept distinct in the table even though they
// share a path, so the httpclient's endpoint lookup and logging stay
// uniform with the other venues.
func buildEndpoints() model.EndpointTable {
	t := model.NewEndpointTable(restBaseURL, wsBaseURL, wsBaseURL)

	t.Set("createOrder", model.Endpoint{Path: "/exchange", Method: model.MethodPOST})
	t.Set("amendOrder", model.Endpoint{Path: "/exchange", Method: model.MethodPOST})
	t.Set("cancelOrder", model.Endpoint{Path: "/exchange", Method: model.MethodPOST})
	t.Set("cancelAllOrders", model.Endpoint{Path: "/exchange", Method: model.MethodPOST})
	t.Set("getOrderbook", model.Endpoint{Path: "/info", Method: model.MethodPOST})
	t.Set("getTrades", model.Endpoint{Path: "/info", Method: model.MethodPOST})
	t.Set("getTicker", model.Endpoint{Path: "/info", Method: model.MethodPOST})
	t.Set("getOhlcv", model.Endpoint{Path: "/info", Method: model.MethodPOST})
	t.Set("getOpenOrders", model.Endpoint{Path: "/info", Method: model.MethodPOST})
	t.Set("getPosition", model.Endpoint{Path: "/info", Method: model.MethodPOST})

	return t
}
