package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without contacting the provider while the
	// circuit breaker is open or saturated in half-open state.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider in the registry, metrics and breaker.
	Name string

	// Timeout bounds each individual attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Default: 3.
	MaxRetries uint64

	// InitialInterval and MaxInterval shape the exponential backoff.
	// Defaults: 100ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker defaults to DefaultCircuitBreakerConfig(Name).
	CircuitBreaker *CircuitBreakerConfig

	// Registry, when set, gets the client registered and every outcome recorded.
	Registry *Registry

	// Metrics, when set, records duration and outcome of every call.
	Metrics *Metrics
}

// DefaultClientConfig returns the defaults for a provider called name.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Client is an HTTP client that retries transient failures with exponential
// backoff behind a circuit breaker. Responses with a 5xx status count as
// failures; other statuses are returned to the caller as is.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	c := &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		config:     cfg,
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do executes req with retries under the request's context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes req with retries under ctx. Once retries are
// exhausted on 5xx responses the last response is returned without error so
// the caller can inspect the status.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, req)

	outcome := err
	if outcome == nil && resp.StatusCode >= 500 {
		outcome = &ServerError{StatusCode: resp.StatusCode}
	}
	c.record(ctx, req, time.Since(start), outcome)

	return resp, err
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var last *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}

		if last != nil && last != resp {
			_ = last.Body.Close()
		}
		if resp != nil {
			last = resp
		}
		return err
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if last != nil {
			return last, nil
		}
		return nil, err
	}

	return last, nil
}

func (c *Client) record(ctx context.Context, req *http.Request, elapsed time.Duration, err error) {
	if c.config.Registry != nil {
		if err != nil {
			c.config.Registry.RecordFailure(c.name, err)
		} else {
			c.config.Registry.RecordSuccess(c.name)
		}
	}
	if c.config.Metrics != nil {
		c.config.Metrics.RecordRequest(ctx, c.name, operationFrom(ctx, req.Method), elapsed, err)
	}
}

// ServerError represents an HTTP 5xx response.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
