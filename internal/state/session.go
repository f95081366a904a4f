// Package state is the per-venue composition root: it wires a
// venue.Port's capability set to the generic httpclient/wsclient/oms
// machinery and owns the single cancellation token that tears the
// whole session down together. Unlike a global singleton, one Session
// value exists per venue the process talks to; cmd/perpcore builds
// one per configured venue and runs them independently.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/abdoElHodaky/perpcore/internal/httpclient"
	"github.com/abdoElHodaky/perpcore/internal/oms"
	"github.com/abdoElHodaky/perpcore/internal/orderbook"
	"github.com/abdoElHodaky/perpcore/internal/venue"
	"github.com/abdoElHodaky/perpcore/internal/wsclient"
	"go.uber.org/zap"
)

// Config parameterizes one venue session. Fields left zero fall back
// to sane defaults in New; PrivateURL/PrivateURLFunc are left unset
// entirely for venues whose private topics ride the public connection
// (dYdX, Hyperliquid) rather than a second authenticated one
// (Binance, Bybit, OKX).
type Config struct {
	Symbol      string
	Port        venue.Port
	Book        *orderbook.Book
	LiveOrders  oms.LiveOrdersFunc
	TotalOrders int
	Sensitivity float64
	OMSPoolSize int

	HTTPConfig httpclient.Config

	PublicURL           string
	ParseFrame          func(raw []byte) (dispatch.Frame, error)
	ReconnectBackoffMin time.Duration
	ReconnectBackoffMax time.Duration

	// PrivateURLFunc resolves the second connection's URL at dial
	// time. For Binance this mints a fresh listen key; venues that
	// authenticate in-band over a fixed URL (Bybit, OKX) leave it nil,
	// and PrivateURL is dialed as is.
	PrivateURL           string
	PrivateURLFunc       func(ctx context.Context) (string, error)
	PrivateAuthenticator wsclient.Authenticator
	PrivateSubscriptions []string

	RefreshInterval   time.Duration
	KeepaliveInterval time.Duration
	KeepalivePing     func(ctx context.Context) error

	Logger *zap.Logger
}

// Session owns one venue's live data model, signed REST client, one
// or two websocket connections, and the OMS dispatching order actions
// against it, all torn down by a single cancellation token.
type Session struct {
	cfg Config

	Client   *httpclient.Client
	Exchange *httpclient.ExchangeClient
	OMS      *oms.OMS

	public  *wsclient.Session
	private *wsclient.Session

	logger *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func mergeTopics(maps ...dispatch.TopicMap) dispatch.TopicMap {
	merged := make(dispatch.TopicMap)
	for _, m := range maps {
		for topic, handler := range m {
			merged[topic] = handler
		}
	}
	return merged
}

// New assembles a Session for cfg.Port against cfg.Book and the rest
// of cfg's live state. It does not start any network activity; call
// Run to do that.
func New(cfg Config) (*Session, error) {
	if cfg.ReconnectBackoffMin == 0 {
		cfg.ReconnectBackoffMin = 500 * time.Millisecond
	}
	if cfg.ReconnectBackoffMax == 0 {
		cfg.ReconnectBackoffMax = 30 * time.Second
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 600 * time.Second
	}
	if cfg.TotalOrders == 0 {
		cfg.TotalOrders = 10
	}

	client := httpclient.New(cfg.Port, cfg.HTTPConfig, cfg.Logger)
	exchange := httpclient.NewExchangeClient(client)

	omsInst, err := oms.New(cfg.Symbol, cfg.TotalOrders, cfg.Sensitivity, exchange, cfg.Book, cfg.LiveOrders, cfg.Logger, cfg.OMSPoolSize)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.With(zap.String("venue", cfg.Port.Name), zap.String("symbol", cfg.Symbol))

	s := &Session{cfg: cfg, Client: client, Exchange: exchange, OMS: omsInst, logger: logger}

	hasPrivateConn := cfg.Port.RequiresAuth && len(cfg.Port.PrivateTopics) > 0

	publicTopics := cfg.Port.PublicTopics
	if !hasPrivateConn {
		publicTopics = mergeTopics(cfg.Port.PublicTopics, cfg.Port.PrivateTopics)
	}
	publicDispatcher := dispatch.New(publicTopics, logger, s.logUnknown)

	s.public = wsclient.New(wsclient.Config{
		URL:                 cfg.PublicURL,
		Subscriptions:       cfg.Port.BuildSubscriptions(cfg.Symbol),
		Dispatcher:          publicDispatcher,
		ReconnectBackoffMin: cfg.ReconnectBackoffMin,
		ReconnectBackoffMax: cfg.ReconnectBackoffMax,
		OnReconnect:         s.refreshAll,
		ParseFrame:          cfg.ParseFrame,
	}, logger.With(zap.String("channel", "public")))

	if hasPrivateConn {
		privateLogger := logger.With(zap.String("channel", "private"))
		privateDispatcher := dispatch.New(cfg.Port.PrivateTopics, privateLogger, s.logUnknown)
		s.private = wsclient.New(wsclient.Config{
			URL:                 cfg.PrivateURL,
			URLFunc:             cfg.PrivateURLFunc,
			Subscriptions:       cfg.PrivateSubscriptions,
			Dispatcher:          privateDispatcher,
			Authenticator:       cfg.PrivateAuthenticator,
			ReconnectBackoffMin: cfg.ReconnectBackoffMin,
			ReconnectBackoffMax: cfg.ReconnectBackoffMax,
			ParseFrame:          cfg.ParseFrame,
		}, privateLogger)
	}

	return s, nil
}

func (s *Session) logUnknown(u dispatch.UnknownTopic) {
	s.logger.Debug("unrouted frame", zap.String("topic", u.Topic))
}

// refreshAll re-pulls a REST snapshot for every role the venue's
// RefreshTopics/RefreshEndpoints tables cover and feeds it to the
// owning handler's Refresh method, bypassing the dispatcher entirely
// since these are direct REST responses, not websocket frames. Used
// as the forced post-reconnect resync; the periodic scheduled refresh
// in Run calls refreshRole for each role on its own ticker instead.
func (s *Session) refreshAll(ctx context.Context) {
	for role := range s.cfg.Port.RefreshTopics {
		if err := s.refreshRole(ctx, role); err != nil {
			s.logger.Error("snapshot refresh failed", zap.String("role", role), zap.Error(err))
		}
	}
}

func (s *Session) refreshRole(ctx context.Context, role string) error {
	topic, ok := s.cfg.Port.RefreshTopics[role]
	if !ok {
		return nil
	}
	endpointName, ok := s.cfg.Port.RefreshEndpoints[role]
	if !ok {
		return nil
	}
	handler, ok := s.cfg.Port.PublicTopics[topic]
	if !ok {
		handler, ok = s.cfg.Port.PrivateTopics[topic]
		if !ok {
			return nil
		}
	}

	body, err := s.Client.Do(ctx, endpointName, map[string]interface{}{"symbol": s.cfg.Symbol})
	if err != nil {
		return err
	}
	return handler.Refresh(body)
}

// Run starts the websocket connection(s), scheduled refreshers, and
// keepalive ping, all under a single cancellation token derived from
// ctx. It returns immediately; call Close (or cancel ctx) to tear the
// session down.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.public.Run(ctx)
	}()

	if s.private != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.private.Run(ctx)
		}()
	}

	for role := range s.cfg.Port.RefreshTopics {
		role := role
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			wsclient.RunScheduledRefresh(ctx, s.cfg.RefreshInterval, s.logger, role, func(ctx context.Context) error {
				return s.refreshRole(ctx, role)
			})
		}()
	}

	if s.cfg.KeepalivePing != nil {
		interval := s.cfg.KeepaliveInterval
		if interval == 0 {
			interval = 30 * time.Minute
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			wsclient.RunKeepalive(ctx, interval, s.logger, s.cfg.KeepalivePing)
		}()
	}
}

// Close cancels the session's token and waits for every subtask
// (both streams, all refreshers, the keepalive loop) to stop.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.OMS.Close()
}
