package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/resilience"
	"github.com/bitcoin-os/shell/internal/infrastructure/tracing"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the breaker for a remote is open
var ErrUnavailable = errors.New("external service unavailable")

// StatusError reports a 5xx answer from a remote
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote answered %d", e.Status)
}

// Options configures a Client
type Options struct {
	Name      string
	Timeout   time.Duration
	Retries   int
	RateLimit float64 // requests per second, 0 = unlimited
	UserAgent string
	Logger    *zap.Logger
}

// DefaultOptions returns options suitable for third-party APIs
func DefaultOptions(name string) Options {
	return Options{
		Name:      name,
		Timeout:   15 * time.Second,
		Retries:   2,
		UserAgent: "BitcoinOS-Shell/1.0",
	}
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
	mu      sync.RWMutex
}

// New creates an outbound client. Transport retries come from
// go-retryablehttp; resty only sets defaults.
func New(opts Options) *Client {
	logger := logging.OrNop(opts.Logger).Named("http." + opts.Name)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	r := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	breaker := resilience.New("http-"+opts.Name, resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.6)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	c := &Client{
		resty:   r,
		limiter: rate.NewLimiter(rate.Inf, 0),
		breaker: breaker,
		logger:  logger,
	}
	c.SetRateLimit(opts.RateLimit)
	return c
}

// SetRateLimit configures requests per second; zero or less removes the limit
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetBaseURL points relative request paths at a host
func (c *Client) SetBaseURL(base string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetBaseURL(base)
}

// Breaker exposes the client's circuit breaker
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Request waits for the rate limiter and builds a request carrying the
// caller's trace headers.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.breaker.State() == resilience.StateOpen {
		return nil, ErrUnavailable
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	req := c.resty.R().SetContext(ctx)
	tracing.Inject(ctx, req.Header)
	return req, nil
}

// Do builds a request, lets fn send it, and runs the exchange behind the
// breaker. Transport errors and 5xx answers count as failures; 4xx answers
// are returned to the caller as responses.
func (c *Client) Do(ctx context.Context, fn func(req *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	resp, err := resilience.Do(ctx, c.breaker, func(ctx context.Context) (*resty.Response, error) {
		req, err := c.Request(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := fn(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, &StatusError{Status: resp.StatusCode(), Body: truncate(resp.String(), 256)}
		}
		return resp, nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	if err != nil {
		c.logger.Debug("request failed", zap.Error(err))
	}
	return resp, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
