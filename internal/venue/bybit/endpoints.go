package bybit

import "github.com/abdoElHodaky/perpcore/internal/model"

const (
	restBaseURL  = "https://api.bybit.com"
	publicWSURL  = "wss://stream.bybit.com/v5/public/linear"
	privateWSURL = "wss://stream.bybit.com/v5/private"
)

func buildEndpoints() model.EndpointTable {
	t := model.NewEndpointTable(restBaseURL, publicWSURL, privateWSURL)

	t.Set("createOrder", model.Endpoint{Path: "/v5/order/create", Method: model.MethodPOST})
	t.Set("amendOrder", model.Endpoint{Path: "/v5/order/amend", Method: model.MethodPOST})
	t.Set("cancelOrder", model.Endpoint{Path: "/v5/order/cancel", Method: model.MethodPOST})
	t.Set("cancelAllOrders", model.Endpoint{Path: "/v5/order/cancel-all", Method: model.MethodPOST})
	t.Set("getOrderbook", model.Endpoint{Path: "/v5/market/orderbook", Method: model.MethodGET})
	t.Set("getTrades", model.Endpoint{Path: "/v5/market/recent-trade", Method: model.MethodGET})
	t.Set("getTicker", model.Endpoint{Path: "/v5/market/tickers", Method: model.MethodGET})
	t.Set("getOhlcv", model.Endpoint{Path: "/v5/market/kline", Method: model.MethodGET})
	t.Set("getOpenOrders", model.Endpoint{Path: "/v5/order/realtime", Method: model.MethodGET})
	t.Set("getPosition", model.Endpoint{Path: "/v5/position/list", Method: model.MethodGET})

	t.Set("ping", model.Endpoint{Path: "/v5/market/time", Method: model.MethodGET})
	t.Set("batchCreateOrders", model.Endpoint{Path: "/v5/order/create-batch", Method: model.MethodPOST})
	t.Set("batchAmendOrders", model.Endpoint{Path: "/v5/order/amend-batch", Method: model.MethodPOST})
	t.Set("batchCancelOrders", model.Endpoint{Path: "/v5/order/cancel-batch", Method: model.MethodPOST})
	t.Set("getInstrumentInfo", model.Endpoint{Path: "/v5/market/instruments-info", Method: model.MethodGET})
	t.Set("getAccountInfo", model.Endpoint{Path: "/v5/account/wallet-balance", Method: model.MethodGET})
	t.Set("setLeverage", model.Endpoint{Path: "/v5/position/set-leverage", Method: model.MethodPOST})

	return t
}
