package dydx

import "github.com/abdoElHodaky/perpcore/internal/model"

const (
	restBaseURL  = "https://indexer.dydx.trade"
	publicWSURL  = "wss://indexer.dydx.trade/v4/ws"
	privateWSURL = "wss://indexer.dydx.trade/v4/ws"
)

// buildEndpoints registers the indexer's read surface plus the order
// create/amend/cancel names. httpclient.Client sends order calls to
// these /v4/orders entries as ordinary REST calls, with the account
// address added by the sign function; this package has no chain node
// client and builds no chain transaction.
func buildEndpoints() model.EndpointTable {
	t := model.NewEndpointTable(restBaseURL, publicWSURL, privateWSURL)

	t.Set("createOrder", model.Endpoint{Path: "/v4/orders", Method: model.MethodPOST})
	t.Set("amendOrder", model.Endpoint{Path: "/v4/orders", Method: model.MethodPOST})
	t.Set("cancelOrder", model.Endpoint{Path: "/v4/orders", Method: model.MethodDELETE})
	t.Set("cancelAllOrders", model.Endpoint{Path: "/v4/orders", Method: model.MethodDELETE})
	t.Set("getOrderbook", model.Endpoint{Path: "/v4/orderbooks/perpetualMarket", Method: model.MethodGET})
	t.Set("getTrades", model.Endpoint{Path: "/v4/trades/perpetualMarket", Method: model.MethodGET})
	t.Set("getOhlcv", model.Endpoint{Path: "/v4/candles/perpetualMarkets", Method: model.MethodGET})
	t.Set("getTicker", model.Endpoint{Path: "/v4/perpetualMarkets", Method: model.MethodGET})
	t.Set("getOpenOrders", model.Endpoint{Path: "/v4/orders", Method: model.MethodGET})
	t.Set("getPosition", model.Endpoint{Path: "/v4/perpetualPositions", Method: model.MethodGET})
	t.Set("accountInfo", model.Endpoint{Path: "/v4/addresses", Method: model.MethodGET})
	t.Set("exchangeInfo", model.Endpoint{Path: "/v4/perpetualMarkets", Method: model.MethodGET})

	return t
}
