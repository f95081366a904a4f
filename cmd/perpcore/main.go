// Command perpcore wires one venue session per entry in the loaded
// configuration and runs them until interrupted. It is a manual
// smoke-testing front door, not a service: no inbound API, no
// persistence, no process supervision beyond signal-triggered
// shutdown.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/config"
	"github.com/abdoElHodaky/perpcore/internal/httpclient"
	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/state"
	"github.com/abdoElHodaky/perpcore/internal/venue/binance"
	"github.com/abdoElHodaky/perpcore/internal/venue/bybit"
	"github.com/abdoElHodaky/perpcore/internal/venue/dydx"
	"github.com/abdoElHodaky/perpcore/internal/venue/hyperliquid"
	"github.com/abdoElHodaky/perpcore/internal/venue/okx"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := make([]*state.Session, 0, len(cfg.Sessions))
	for _, sc := range cfg.Sessions {
		sess, err := buildSession(sc, logger)
		if err != nil {
			logger.Error("failed to build session", zap.String("venue", sc.Venue), zap.Error(err))
			continue
		}
		sessions = append(sessions, sess)
		sess.Run(ctx)
		logger.Info("session started", zap.String("venue", sc.Venue), zap.String("symbol", sc.Symbol))
	}

	<-ctx.Done()
	logger.Info("shutting down")
	for _, sess := range sessions {
		sess.Close()
	}
}

// buildSession constructs the venue-specific Port and live State for
// sc.Venue and assembles them into a state.Session. This is the one
// place in the repo that knows about every venue package at once;
// everything downstream operates on the generic venue.Port/oms/
// wsclient machinery.
func buildSession(sc config.SessionConfig, logger *zap.Logger) (*state.Session, error) {
	refreshInterval := time.Duration(sc.RefreshIntervalS) * time.Second

	switch sc.Venue {
	case "binance":
		return buildBinanceSession(sc, refreshInterval, logger)
	case "bybit":
		return buildBybitSession(sc, refreshInterval, logger)
	case "okx":
		return buildOKXSession(sc, refreshInterval, logger)
	case "dydx":
		return buildDydxSession(sc, refreshInterval, logger)
	case "hyperliquid":
		return buildHyperliquidSession(sc, refreshInterval, logger)
	default:
		return nil, model.New(model.ErrValidation, sc.Venue, "unknown venue")
	}
}

func buildBinanceSession(sc config.SessionConfig, refreshInterval time.Duration, logger *zap.Logger) (*state.Session, error) {
	st := binance.NewState(sc.Symbol, sc.OrderbookDepth, sc.Rings.TradesCapacity, sc.Rings.CandlesCapacity)
	port := binance.NewPort(sc.Credentials.APIKey, sc.Credentials.APISecret, st)

	restClient := httpclient.New(port, httpclient.Config{}, logger)
	listenKeys := binance.NewListenKeyManager(restClient)

	return state.New(state.Config{
		Symbol:      sc.Symbol,
		Port:        port,
		Book:        st.Book,
		LiveOrders:  st.LiveOrders,
		TotalOrders: sc.OMS.TotalOrders,
		Sensitivity: sc.OMS.Sensitivity,
		OMSPoolSize: 8,
		PublicURL:   port.Endpoints.PublicWSURL,
		ParseFrame:  binance.ParseFrame,
		PrivateURLFunc: func(ctx context.Context) (string, error) {
			key, err := listenKeys.Obtain(ctx)
			if err != nil {
				return "", err
			}
			return port.Endpoints.PrivateWSURL + "/" + key, nil
		},
		PrivateURL:        port.Endpoints.PrivateWSURL,
		RefreshInterval:   refreshInterval,
		KeepaliveInterval: 30 * time.Minute,
		KeepalivePing:     listenKeys.Ping,
		Logger:            logger,
	})
}

func buildBybitSession(sc config.SessionConfig, refreshInterval time.Duration, logger *zap.Logger) (*state.Session, error) {
	st := bybit.NewState(sc.Symbol, sc.OrderbookDepth, sc.Rings.TradesCapacity, sc.Rings.CandlesCapacity)
	port := bybit.NewPort(sc.Credentials.APIKey, sc.Credentials.APISecret, sc.RecvWindowMs, st)
	auth := bybit.NewAuthenticator(sc.Credentials.APIKey, sc.Credentials.APISecret)

	return state.New(state.Config{
		Symbol:               sc.Symbol,
		Port:                 port,
		Book:                 st.Book,
		LiveOrders:           st.LiveOrders,
		TotalOrders:          sc.OMS.TotalOrders,
		Sensitivity:          sc.OMS.Sensitivity,
		OMSPoolSize:          8,
		PublicURL:            port.Endpoints.PublicWSURL,
		ParseFrame:           bybit.ParseFrame,
		PrivateURL:           port.Endpoints.PrivateWSURL,
		PrivateAuthenticator: auth,
		PrivateSubscriptions: []string{`{"op":"subscribe","args":["order","position"]}`},
		RefreshInterval:      refreshInterval,
		Logger:               logger,
	})
}

func buildOKXSession(sc config.SessionConfig, refreshInterval time.Duration, logger *zap.Logger) (*state.Session, error) {
	st := okx.NewState(sc.Symbol, sc.OrderbookDepth, sc.Rings.TradesCapacity, sc.Rings.CandlesCapacity)
	port := okx.NewPort(sc.Credentials.APIKey, sc.Credentials.APISecret, sc.Credentials.Passphrase, st)
	auth := okx.NewAuthenticator(sc.Credentials.APIKey, sc.Credentials.APISecret, sc.Credentials.Passphrase)

	return state.New(state.Config{
		Symbol:               sc.Symbol,
		Port:                 port,
		Book:                 st.Book,
		LiveOrders:           st.LiveOrders,
		TotalOrders:          sc.OMS.TotalOrders,
		Sensitivity:          sc.OMS.Sensitivity,
		OMSPoolSize:          8,
		PublicURL:            port.Endpoints.PublicWSURL,
		ParseFrame:           okx.ParseFrame,
		PrivateURL:           port.Endpoints.PrivateWSURL,
		PrivateAuthenticator: auth,
		PrivateSubscriptions: []string{
			`{"op":"subscribe","args":[{"channel":"orders","instType":"SWAP","instId":"` + sc.Symbol + `"},{"channel":"positions","instType":"SWAP","instId":"` + sc.Symbol + `"}]}`,
		},
		RefreshInterval: refreshInterval,
		Logger:          logger,
	})
}

func buildDydxSession(sc config.SessionConfig, refreshInterval time.Duration, logger *zap.Logger) (*state.Session, error) {
	st := dydx.NewState(sc.Symbol, sc.OrderbookDepth, sc.Rings.TradesCapacity, sc.Rings.CandlesCapacity)
	port := dydx.NewPort(sc.Credentials.Address, st)

	return state.New(state.Config{
		Symbol:          sc.Symbol,
		Port:            port,
		Book:            st.Book,
		LiveOrders:      st.LiveOrders,
		TotalOrders:     sc.OMS.TotalOrders,
		Sensitivity:     sc.OMS.Sensitivity,
		OMSPoolSize:     8,
		PublicURL:       port.Endpoints.PublicWSURL,
		ParseFrame:      dydx.ParseFrame,
		RefreshInterval: refreshInterval,
		Logger:          logger,
	})
}

func buildHyperliquidSession(sc config.SessionConfig, refreshInterval time.Duration, logger *zap.Logger) (*state.Session, error) {
	privateKey, err := crypto.HexToECDSA(sc.Credentials.APISecret)
	if err != nil {
		return nil, model.Wrap(err, model.ErrValidation, "hyperliquid", "invalid private key")
	}

	st := hyperliquid.NewState(sc.Symbol, sc.OrderbookDepth, sc.Rings.TradesCapacity, sc.Rings.CandlesCapacity)
	port := hyperliquid.NewPort(privateKey, sc.Credentials.Address, !sc.Testnet, st)

	return state.New(state.Config{
		Symbol:          sc.Symbol,
		Port:            port,
		Book:            st.Book,
		LiveOrders:      st.LiveOrders,
		TotalOrders:     sc.OMS.TotalOrders,
		Sensitivity:     sc.OMS.Sensitivity,
		OMSPoolSize:     8,
		PublicURL:       port.Endpoints.PublicWSURL,
		ParseFrame:      hyperliquid.ParseFrame,
		RefreshInterval: refreshInterval,
		Logger:          logger,
	})
}
