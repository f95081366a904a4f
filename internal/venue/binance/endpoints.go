package binance

import "github.com/abdoElHodaky/perpcore/internal/model"

const (
	restBaseURL = "https://fapi.binance.com"
	wsBaseURL   = "wss://fstream.binance.com/ws"
)

func buildEndpoints() model.EndpointTable {
	t := model.NewEndpointTable(restBaseURL, wsBaseURL, wsBaseURL)

	t.Set("createOrder", model.Endpoint{Path: "/fapi/v1/order", Method: model.MethodPOST})
	t.Set("amendOrder", model.Endpoint{Path: "/fapi/v1/order", Method: model.MethodPUT})
	t.Set("cancelOrder", model.Endpoint{Path: "/fapi/v1/order", Method: model.MethodDELETE})
	t.Set("cancelAllOrders", model.Endpoint{Path: "/fapi/v1/allOpenOrders", Method: model.MethodDELETE})
	t.Set("getOrderbook", model.Endpoint{Path: "/fapi/v1/depth", Method: model.MethodGET})
	t.Set("getTrades", model.Endpoint{Path: "/fapi/v1/trades", Method: model.MethodGET})
	t.Set("getOhlcv", model.Endpoint{Path: "/fapi/v1/klines", Method: model.MethodGET})
	t.Set("getTicker", model.Endpoint{Path: "/fapi/v1/premiumIndex", Method: model.MethodGET})
	t.Set("getOpenOrders", model.Endpoint{Path: "/fapi/v1/openOrders", Method: model.MethodGET})
	t.Set("getPosition", model.Endpoint{Path: "/fapi/v2/positionRisk", Method: model.MethodGET})

	t.Set("ping", model.Endpoint{Path: "/fapi/v1/ping", Method: model.MethodGET})
	t.Set("batchCreateOrders", model.Endpoint{Path: "/fapi/v1/batchOrders", Method: model.MethodPOST})
	t.Set("batchAmendOrders", model.Endpoint{Path: "/fapi/v1/batchOrders", Method: model.MethodPUT})
	t.Set("batchCancelOrders", model.Endpoint{Path: "/fapi/v1/batchOrders", Method: model.MethodDELETE})
	t.Set("exchangeInfo", model.Endpoint{Path: "/fapi/v1/exchangeInfo", Method: model.MethodGET})
	t.Set("accountInfo", model.Endpoint{Path: "/fapi/v2/account", Method: model.MethodGET})
	t.Set("listenKey", model.Endpoint{Path: "/fapi/v1/listenKey", Method: model.MethodPOST})
	t.Set("pingListenKey", model.Endpoint{Path: "/fapi/v1/listenKey", Method: model.MethodPUT})
	t.Set("setLeverage", model.Endpoint{Path: "/fapi/v1/leverage", Method: model.MethodPOST})

	return t
}
