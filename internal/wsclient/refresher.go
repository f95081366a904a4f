package wsclient

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunScheduledRefresh ticks every interval until ctx is cancelled,
// calling refresh on each tick. One of these runs per topic
// (orderbook, trades, OHLCV, ticker) independently of the stream, to
// correct any drift an incremental update might have missed.
func RunScheduledRefresh(ctx context.Context, interval time.Duration, logger *zap.Logger, topic string, refresh func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := refresh(ctx); err != nil {
				logger.Error("scheduled refresh failed", zap.String("topic", topic), zap.Error(err))
			}
		}
	}
}

// RunKeepalive pings the venue on a fixed interval until ctx is
// cancelled. Used for Binance's periodic listen-key PUT and any
// venue whose private channel expires without a keepalive.
func RunKeepalive(ctx context.Context, interval time.Duration, logger *zap.Logger, ping func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ping(ctx); err != nil {
				logger.Error("keepalive ping failed", zap.Error(err))
			}
		}
	}
}
