package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeHandler struct {
	refreshed int
	processed int
}

func (h *fakeHandler) Refresh(payload json.RawMessage) error {
	h.refreshed++
	return nil
}

func (h *fakeHandler) Process(payload json.RawMessage) error {
	h.processed++
	return nil
}

func testPort(t *testing.T, baseURL string, requiresAuth bool) (venue.Port, *fakeHandler, *fakeHandler) {
	t.Helper()
	obHandler := &fakeHandler{}
	orderHandler := &fakeHandler{}

	endpoints := model.NewEndpointTable(baseURL, "ws://public", "ws://private")
	endpoints.Set("getOrderbook", model.Endpoint{Path: "/orderbook", Method: model.MethodGET})

	orderTopics := dispatch.TopicMap{"orders": orderHandler}

	port := venue.Port{
		Name:      "testvenue",
		Endpoints: endpoints,
		Sign: func(ctx context.Context, method, path string, payload map[string]interface{}) (venue.SignedRequest, error) {
			return venue.SignedRequest{}, nil
		},
		ClassifyError:      func(statusCode int, body []byte) *model.CoreError { return model.New(model.ErrTransport, "testvenue", "error") },
		BuildSubscriptions: func(symbol string) []string { return []string{"sub"} },
		PublicTopics:       dispatch.TopicMap{"book": obHandler},
		PrivateTopics:      orderTopics,
		RequiresAuth:       requiresAuth,
		RefreshTopics:      map[string]string{"orderbook": "book"},
		RefreshEndpoints:   map[string]string{"orderbook": "getOrderbook"},
	}
	return port, obHandler, orderHandler
}

func TestRefreshRoleCallsHandlerRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	port, obHandler, _ := testPort(t, srv.URL, true)

	s, err := New(Config{
		Symbol:      "BTC-PERP",
		Port:        port,
		Book:        orderbook.New(10),
		LiveOrders:  func() []model.Order { return nil },
		OMSPoolSize: 2,
		PublicURL:   "ws://public",
		ParseFrame:  func(raw []byte) (dispatch.Frame, error) { return dispatch.Frame{}, nil },
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	defer s.OMS.Close()

	require.NoError(t, s.refreshRole(context.Background(), "orderbook"))
	assert.Equal(t, 1, obHandler.refreshed)
}

func TestNewSeparatesPrivateConnectionWhenAuthRequired(t *testing.T) {
	port, _, _ := testPort(t, "http://unused", true)

	s, err := New(Config{
		Symbol:               "BTC-PERP",
		Port:                 port,
		Book:                 orderbook.New(10),
		LiveOrders:           func() []model.Order { return nil },
		OMSPoolSize:          2,
		PublicURL:            "ws://public",
		PrivateURL:           "ws://private",
		PrivateSubscriptions: []string{"sub"},
		ParseFrame:           func(raw []byte) (dispatch.Frame, error) { return dispatch.Frame{}, nil },
		Logger:               zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	defer s.OMS.Close()

	assert.NotNil(t, s.private)
}

func TestNewMergesPrivateTopicsIntoPublicWhenNoAuthHandshake(t *testing.T) {
	port, _, _ := testPort(t, "http://unused", false)

	s, err := New(Config{
		Symbol:      "BTC-PERP",
		Port:        port,
		Book:        orderbook.New(10),
		LiveOrders:  func() []model.Order { return nil },
		OMSPoolSize: 2,
		PublicURL:   "ws://public",
		ParseFrame:  func(raw []byte) (dispatch.Frame, error) { return dispatch.Frame{}, nil },
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	defer s.OMS.Close()

	assert.Nil(t, s.private)
}
