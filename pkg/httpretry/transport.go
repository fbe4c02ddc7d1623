package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Config holds configuration for the retrying transport.
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	// (default: 3). A negative value disables retries.
	MaxRetries int

	// AttemptTimeout bounds each attempt including reading response headers
	// (default: 1 second).
	AttemptTimeout time.Duration

	// InitialInterval is the first backoff wait (default: 100ms).
	InitialInterval time.Duration

	// MaxInterval caps a single backoff wait (default: 2 seconds).
	MaxInterval time.Duration

	// RandomizationFactor jitters the waits (default: 0.5). Set to a negative
	// value for fixed, deterministic waits.
	RandomizationFactor float64

	// Base performs the actual requests (default: http.DefaultTransport).
	Base http.RoundTripper

	// Logger (optional).
	Logger hclog.Logger
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:          3,
		AttemptTimeout:      1 * time.Second,
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         2 * time.Second,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
	}
}

// Transport is an http.RoundTripper that retries timed out attempts and 5xx
// responses with exponential backoff. Other errors and 4xx responses are
// returned immediately. It is safe for concurrent use.
//
// When retries are exhausted the last 5xx response is returned as is, so
// callers see the final status. If the last attempt failed without a
// response, an *ExhaustedError is returned.
type Transport struct {
	maxRetries          int
	attemptTimeout      time.Duration
	initialInterval     time.Duration
	maxInterval         time.Duration
	randomizationFactor float64
	base                http.RoundTripper
	logger              hclog.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

// New creates a retrying transport, filling unset fields from DefaultConfig.
func New(cfg Config) *Transport {
	defaults := DefaultConfig()
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = defaults.AttemptTimeout
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	if cfg.RandomizationFactor == 0 {
		cfg.RandomizationFactor = defaults.RandomizationFactor
	}
	if cfg.RandomizationFactor < 0 {
		cfg.RandomizationFactor = 0
	}
	if cfg.Base == nil {
		cfg.Base = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Transport{
		maxRetries:          cfg.MaxRetries,
		attemptTimeout:      cfg.AttemptTimeout,
		initialInterval:     cfg.InitialInterval,
		maxInterval:         cfg.MaxInterval,
		randomizationFactor: cfg.RandomizationFactor,
		base:                cfg.Base,
		logger:              cfg.Logger.Named("httpretry"),
	}
}

// ExhaustedError is returned when every attempt timed out.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Timeout reports true; only timeouts are retried until exhaustion.
func (e *ExhaustedError) Timeout() bool {
	return true
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	bo := t.newBackOff()

	var attemptErrs *multierror.Error
	for attempt := 0; ; attempt++ {
		if attempt > 0 && req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
			return nil, fmt.Errorf("cannot retry %s %s: request body is not rewindable", req.Method, req.URL.Redacted())
		}

		resp, err := t.attempt(req, attempt)

		var reason string
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, err
			}
			if !isTimeout(err) {
				return nil, err
			}
			attemptErrs = multierror.Append(attemptErrs, fmt.Errorf("attempt %d: %w", attempt+1, err))
			reason = err.Error()
		case resp.StatusCode >= http.StatusInternalServerError:
			reason = resp.Status
		default:
			return resp, nil
		}

		if attempt >= t.maxRetries {
			if resp != nil {
				return resp, nil
			}
			return nil, &ExhaustedError{Attempts: attempt + 1, Err: attemptErrs.ErrorOrNil()}
		}

		if resp != nil {
			drain(resp)
		}

		wait := bo.NextBackOff()
		t.logger.Debug("retrying request",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"attempt", attempt+1,
			"reason", reason,
			"wait", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *Transport) attempt(req *http.Request, n int) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.attemptTimeout)

	r := req.Clone(ctx)
	if n > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		r.Body = body
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		cancel()
		return nil, err
	}

	// The attempt context must outlive RoundTrip until the body is consumed.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (t *Transport) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.initialInterval
	bo.MaxInterval = t.maxInterval
	bo.RandomizationFactor = t.randomizationFactor
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
