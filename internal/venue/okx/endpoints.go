package okx

import "github.com/abdoElHodaky/perpcore/internal/model"

const (
	restBaseURL       = "https://www.okx.com"
	publicWSBaseURL   = "wss://ws.okx.com:8443/ws/v5/public"
	privateWSBaseURL  = "wss://ws.okx.com:8443/ws/v5/private"
)

func buildEndpoints() model.EndpointTable {
	t := model.NewEndpointTable(restBaseURL, publicWSBaseURL, privateWSBaseURL)

	t.Set("createOrder", model.Endpoint{Path: "/api/v5/trade/order", Method: model.MethodPOST})
	t.Set("amendOrder", model.Endpoint{Path: "/api/v5/trade/amend-order", Method: model.MethodPOST})
	t.Set("cancelOrder", model.Endpoint{Path: "/api/v5/trade/cancel-order", Method: model.MethodPOST})
	t.Set("cancelAllOrders", model.Endpoint{Path: "/api/v5/trade/cancel-batch-orders", Method: model.MethodPOST})
	t.Set("getOrderbook", model.Endpoint{Path: "/api/v5/market/books", Method: model.MethodGET})
	t.Set("getTrades", model.Endpoint{Path: "/api/v5/market/trades", Method: model.MethodGET})
	t.Set("getTicker", model.Endpoint{Path: "/api/v5/market/ticker", Method: model.MethodGET})
	t.Set("getOhlcv", model.Endpoint{Path: "/api/v5/market/candles", Method: model.MethodGET})
	t.Set("getOpenOrders", model.Endpoint{Path: "/api/v5/trade/orders-pending", Method: model.MethodGET})
	t.Set("getPosition", model.Endpoint{Path: "/api/v5/account/positions", Method: model.MethodGET})

	t.Set("ping", model.Endpoint{Path: "/api/v5/public/time", Method: model.MethodGET})
	t.Set("batchCreateOrders", model.Endpoint{Path: "/api/v5/trade/order", Method: model.MethodPOST})
	t.Set("batchAmendOrders", model.Endpoint{Path: "/api/v5/trade/amend-batch-orders", Method: model.MethodPOST})
	t.Set("batchCancelOrders", model.Endpoint{Path: "/api/v5/trade/cancel-batch-orders", Method: model.MethodPOST})
	t.Set("getInstrumentInfo", model.Endpoint{Path: "/api/v5/public/instruments", Method: model.MethodGET})
	t.Set("getAccountInfo", model.Endpoint{Path: "/api/v5/account/balance", Method: model.MethodGET})
	t.Set("setLeverage", model.Endpoint{Path: "/api/v5/account/set-leverage", Method: model.MethodPOST})

	return t
}
