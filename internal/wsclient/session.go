// Package wsclient implements the websocket session state machine
// shared by every venue: dial, authenticate (if the channel needs
// it), subscribe, stream, and reconnect with backoff on failure,
// forcing a REST snapshot refresh once the reconnect lands.
package wsclient

import (
	"context"
	"sync"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/dispatch"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is one point in the session's lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateSubscribing
	StateStreaming
	StateClosing
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateSubscribing:
		return "subscribing"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Authenticator performs whatever handshake a private channel needs
// once the connection is open (Bybit's and OKX's in-band auth
// frames). Binance needs none, since its listen key travels in the
// dial URL (see Config.URLFunc). Venues with no handshake (dYdX,
// Hyperliquid) pass a nil Authenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, conn *websocket.Conn) error
}

// Config parameterizes one session.
type Config struct {
	URL string
	// URLFunc, if set, resolves the dial URL fresh on every connect
	// cycle instead of reusing URL. Binance's listen-key-bearing
	// private stream needs a new key minted per reconnect rather than
	// a fixed address.
	URLFunc             func(ctx context.Context) (string, error)
	Subscriptions       []string
	Dispatcher          *dispatch.Dispatcher
	Authenticator       Authenticator
	ReconnectBackoffMin time.Duration
	ReconnectBackoffMax time.Duration
	OnReconnect         func(ctx context.Context) // forces a REST snapshot refresh
	ParseFrame          func(raw []byte) (dispatch.Frame, error)
}

// Session drives one venue websocket connection through its full
// lifecycle on the goroutine that calls Run. The only other goroutine
// a Session spawns is the socket reader, which hands raw frames over a
// channel to that goroutine for parsing and dispatch. Scheduled
// refreshers and keepalive pings are not part of a Session: they run
// on goroutines of their own (see state.Session) and call the same
// handlers directly.
type Session struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.RWMutex
	state State

	conn   *websocket.Conn
	cancel context.CancelFunc
}

// New builds a Session. It does not connect until Run is called.
func New(cfg Config, logger *zap.Logger) *Session {
	if cfg.ReconnectBackoffMin == 0 {
		cfg.ReconnectBackoffMin = 500 * time.Millisecond
	}
	if cfg.ReconnectBackoffMax == 0 {
		cfg.ReconnectBackoffMax = 30 * time.Second
	}
	return &Session{cfg: cfg, logger: logger, state: StateDisconnected}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run drives the session until ctx is cancelled, reconnecting with
// exponential backoff whenever the connection faults.
func (s *Session) Run(ctx context.Context) {
	backoff := s.cfg.ReconnectBackoffMin

	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosing)
			return
		default:
		}

		err := s.runOnce(ctx)
		if ctx.Err() != nil {
			s.setState(StateClosing)
			return
		}

		s.setState(StateFaulted)
		if err != nil {
			s.logger.Warn("session faulted, reconnecting", zap.Error(err), zap.Duration("backoff", backoff))
		}

		select {
		case <-ctx.Done():
			s.setState(StateClosing)
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > s.cfg.ReconnectBackoffMax {
			backoff = s.cfg.ReconnectBackoffMax
		}

		s.setState(StateDisconnected)
	}
}

// runOnce performs one full connect->stream cycle, returning when the
// connection drops or ctx is cancelled. Each cycle gets its own
// connection id so reconnect cycles are distinguishable in logs.
func (s *Session) runOnce(ctx context.Context) error {
	connID := uuid.New().String()
	logger := s.logger.With(zap.String("conn_id", connID))

	s.setState(StateConnecting)

	url := s.cfg.URL
	if s.cfg.URLFunc != nil {
		resolved, err := s.cfg.URLFunc(ctx)
		if err != nil {
			return err
		}
		url = resolved
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	if s.cfg.Authenticator != nil {
		s.setState(StateAuthenticating)
		if err := s.cfg.Authenticator.Authenticate(ctx, conn); err != nil {
			return err
		}
	}

	s.setState(StateSubscribing)
	for _, sub := range s.cfg.Subscriptions {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(sub)); err != nil {
			return err
		}
	}
	logger.Info("subscribed", zap.Int("subscriptions", len(s.cfg.Subscriptions)))

	if s.cfg.OnReconnect != nil {
		s.cfg.OnReconnect(ctx)
	}

	s.setState(StateStreaming)
	return s.readLoop(ctx, conn)
}

// readLoop parses and dispatches frames on the calling goroutine, in
// receive order. It is not the only writer to the handlers' state:
// scheduled REST refreshes call the same handlers' Refresh from other
// goroutines.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	type result struct {
		data []byte
		err  error
	}
	frames := make(chan result, 1)

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			frames <- result{data: data, err: err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-frames:
			if r.err != nil {
				return r.err
			}
			frame, err := s.cfg.ParseFrame(r.data)
			if err != nil {
				s.logger.Error("failed to parse frame", zap.Error(err))
				continue
			}
			if err := s.cfg.Dispatcher.Route(frame); err != nil {
				s.logger.Error("failed to route frame", zap.Error(err))
			}
		}
	}
}

// Send writes a raw message on the active connection. Used for
// keepalive pings and private-channel re-auth frames.
func (s *Session) Send(raw []byte) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}
