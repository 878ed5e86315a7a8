package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 3 * time.Second
	defaultBackoffFactor  = 2.0
)

// RetryConfig holds exponential backoff settings. MaxRetries counts
// attempts after the first, so MaxRetries 2 means at most three calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// RetryHandler reruns failed chat calls on transient errors.
type RetryHandler struct {
	cfg RetryConfig
}

// NewRetryHandler normalizes the config and returns a handler.
// Zero or out-of-range fields fall back to package defaults.
func NewRetryHandler(cfg RetryConfig) *RetryHandler {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultBackoffFactor
	}
	return &RetryHandler{cfg: cfg}
}

// Do runs fn, sleeping with exponential backoff between attempts. It
// stops on success, on a non-retryable error, when attempts run out, or
// when ctx is done (the context error wins over fn's error).
func (r *RetryHandler) Do(ctx context.Context, fn func() error) error {
	wait := r.cfg.InitialBackoff

	for tries := 0; ; tries++ {
		err := fn()
		if err == nil {
			return nil
		}
		if tries == r.cfg.MaxRetries || !shouldRetry(err) {
			return err
		}

		select {
		case <-ctx.Done():
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			return err
		case <-time.After(wait):
		}

		wait = time.Duration(float64(wait) * r.cfg.Multiplier)
		if wait > r.cfg.MaxBackoff {
			wait = r.cfg.MaxBackoff
		}
	}
}

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// shouldRetry classifies an error as transient. API errors retry on
// rate-limit and 5xx statuses only; network errors retry when the stack
// flags them temporary or they surface as dial/read op errors.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return retryableStatus[apiErr.StatusCode]
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Temporary() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
