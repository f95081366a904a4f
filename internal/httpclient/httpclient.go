// Package httpclient is the signed REST client shared by every venue.
// It knows nothing about a specific exchange: given a venue.Port it
// signs, rate-limits, circuit-breaks, and retries a request the same
// way regardless of which venue it is talking to.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/abdoElHodaky/perpcore/internal/model"
	"github.com/abdoElHodaky/perpcore/internal/venue"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls retry/backoff/rate-limit behavior. Zero values fall
// back to sane defaults in New.
type Config struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
}

// Client is a signed REST client bound to one venue.Port.
type Client struct {
	port    venue.Port
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cfg     Config
	logger  *zap.Logger
}

// New builds a Client for port. logger is tagged with the venue name
// on every log line it emits.
func New(port venue.Port, cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = 10
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 200 * time.Millisecond
	}
	if cfg.BackoffCap == 0 {
		cfg.BackoffCap = 5 * time.Second
	}

	breakerSettings := gobreaker.Settings{
		Name: fmt.Sprintf("%s-rest", port.Name),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	return &Client{
		port:    port,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(breakerSettings),
		cfg:     cfg,
		logger:  logger.With(zap.String("venue", port.Name)),
	}
}

// Do issues a signed request against the named endpoint, retrying
// ServerRetryable/RateLimited failures with exponential backoff and
// recomputing the signature on every attempt (the timestamp a
// signature is taken over is always now). It returns the raw response
// body on success.
func (c *Client) Do(ctx context.Context, endpointName string, payload map[string]interface{}) ([]byte, error) {
	endpoint, ok := c.port.Endpoints.Get(endpointName)
	if !ok {
		return nil, model.New(model.ErrValidation, c.port.Name, "unknown endpoint "+endpointName)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BackoffBase * time.Duration(1<<uint(attempt-1))
			if backoff > c.cfg.BackoffCap {
				backoff = c.cfg.BackoffCap
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doOnce(ctx, endpoint, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !model.IsRetryable(err) {
			return nil, err
		}
		c.logger.Warn("retrying request", zap.String("endpoint", endpointName), zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, endpoint model.Endpoint, payload map[string]interface{}) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		signed, err := c.port.Sign(ctx, string(endpoint.Method), endpoint.Path, payload)
		if err != nil {
			return nil, model.Wrap(err, model.ErrValidation, c.port.Name, "failed to sign request")
		}

		reqURL, err := url.Parse(c.port.Endpoints.BaseURL + endpoint.Path)
		if err != nil {
			return nil, model.Wrap(err, model.ErrValidation, c.port.Name, "failed to parse endpoint url")
		}
		if signed.Query != "" {
			reqURL.RawQuery = signed.Query
		}

		var body io.Reader
		if signed.Body != nil {
			body = bytes.NewReader(signed.Body)
		} else if endpoint.Method != model.MethodGET && payload != nil {
			encoded, marshalErr := json.Marshal(payload)
			if marshalErr != nil {
				return nil, model.Wrap(marshalErr, model.ErrValidation, c.port.Name, "failed to marshal payload")
			}
			body = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, string(endpoint.Method), reqURL.String(), body)
		if err != nil {
			return nil, model.Wrap(err, model.ErrTransport, c.port.Name, "failed to build request")
		}
		for k, v := range signed.Headers {
			req.Header.Set(k, v)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, model.Wrap(err, model.ErrTransport, c.port.Name, "request failed")
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, model.Wrap(err, model.ErrTransport, c.port.Name, "failed to read response body")
		}

		if resp.StatusCode >= 400 {
			return nil, c.port.ClassifyError(resp.StatusCode, respBody)
		}

		return respBody, nil
	})

	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
