package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/gridiron-metrics/internal/config"
	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the breaker opens

	// CircuitBreakerCooldown is how long the breaker stays open before one
	// trial request is let through.
	CircuitBreakerCooldown time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      250 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,

		CircuitBreakerCooldown: 2 * time.Minute,
	}
}

// HTTPClientConfigFrom maps the data source section onto client settings.
func HTTPClientConfigFrom(cfg config.DataSourceConfig) HTTPClientConfig {
	c := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RateLimitPerSecond > 0 {
		c.RateLimit = float64(cfg.RateLimitPerSecond)
	}
	if cfg.CircuitBreakerCooldownSeconds > 0 {
		c.CircuitBreakerCooldown = time.Duration(cfg.CircuitBreakerCooldownSeconds) * time.Second
	}
	c.MaxRetries = cfg.RetryAttempts
	return c
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and a
// consecutive-error circuit breaker. An open breaker half-opens after the
// cool-down: one trial request goes through and its outcome closes the
// breaker or restarts the cool-down. Safe for concurrent use.
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration
	source            string
	now               func() time.Time

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	trialInFlight     bool
	lastError         error

	logger   *logrus.Logger
	auditLog *logger.AuditLogger
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client. source
// labels breaker events in the audit log.
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, source string, log *logrus.Logger) *RateLimitedHTTPClient {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	// Retries are reported through our own logs and metrics.
	retryClient.Logger = nil

	cooldown := cfg.CircuitBreakerCooldown
	if cooldown <= 0 {
		cooldown = DefaultHTTPClientConfig().CircuitBreakerCooldown
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cooldown,
		source:            source,
		now:               time.Now,
		logger:            log,
		auditLog:          logger.NewAuditLogger(log),
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	trial, err := c.admit()
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.endTrial(trial)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		c.endTrial(trial)
		return nil, err
	}
	resp, err := c.client.Do(rreq.WithContext(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	if trial {
		c.trialInFlight = false
	}
	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		switch {
		case c.isOpen && trial:
			c.openedAt = c.now()
			c.auditLog.LogCircuitBreakerEvent(c.source, "open", c.consecutiveErrors)
		case !c.isOpen && c.consecutiveErrors >= c.circuitBreakerMax:
			c.isOpen = true
			c.openedAt = c.now()
			metrics.RecordCircuitBreakerTrip()
			c.auditLog.LogCircuitBreakerEvent(c.source, "open", c.consecutiveErrors)
		}
		return nil, err
	}

	if resp.StatusCode < 500 {
		c.consecutiveErrors = 0
		if c.isOpen {
			c.isOpen = false
			c.lastError = nil
			c.auditLog.LogCircuitBreakerEvent(c.source, "closed", 0)
		}
	} else if c.isOpen && trial {
		c.openedAt = c.now()
	}
	return resp, nil
}

// admit decides whether a request may go out. trial is true for the single
// request allowed through a half-open breaker.
func (c *RateLimitedHTTPClient) admit() (trial bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return false, nil
	}
	if c.trialInFlight || c.now().Sub(c.openedAt) < c.cooldown {
		return false, fmt.Errorf("circuit breaker open: %w", c.lastError)
	}
	c.trialInFlight = true
	return true, nil
}

func (c *RateLimitedHTTPClient) endTrial(trial bool) {
	if !trial {
		return
	}
	c.mu.Lock()
	c.trialInFlight = false
	c.mu.Unlock()
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// IsOpen reports whether the circuit breaker is open.
func (c *RateLimitedHTTPClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Reset closes the circuit breaker.
func (c *RateLimitedHTTPClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		c.auditLog.LogCircuitBreakerEvent(c.source, "closed", c.consecutiveErrors)
	}
	c.isOpen = false
	c.trialInFlight = false
	c.consecutiveErrors = 0
	c.lastError = nil
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}

		// Retry on rate limit (429) and gateway/server errors
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
