package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
)

func TestNewRetryHandler(t *testing.T) {
	t.Run("with all config", func(t *testing.T) {
		cfg := RetryConfig{
			MaxRetries:     5,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Multiplier:     2.5,
		}
		handler := NewRetryHandler(cfg)
		require.NotNil(t, handler)
		require.Equal(t, 5, handler.cfg.MaxRetries)
		require.Equal(t, 100*time.Millisecond, handler.cfg.InitialBackoff)
		require.Equal(t, 2*time.Second, handler.cfg.MaxBackoff)
		require.Equal(t, 2.5, handler.cfg.Multiplier)
	})

	t.Run("with defaults", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{})
		require.NotNil(t, handler)
		require.Equal(t, defaultInitialBackoff, handler.cfg.InitialBackoff)
		require.Equal(t, defaultMaxBackoff, handler.cfg.MaxBackoff)
		require.Equal(t, defaultBackoffFactor, handler.cfg.Multiplier)
		require.Equal(t, 0, handler.cfg.MaxRetries)
	})

	t.Run("negative values use defaults", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{
			MaxRetries:     -1,
			InitialBackoff: -100 * time.Millisecond,
			MaxBackoff:     -2 * time.Second,
			Multiplier:     0.5,
		})
		require.NotNil(t, handler)
		require.Equal(t, 0, handler.cfg.MaxRetries)
		require.Equal(t, defaultInitialBackoff, handler.cfg.InitialBackoff)
		require.Equal(t, defaultMaxBackoff, handler.cfg.MaxBackoff)
		require.Equal(t, defaultBackoffFactor, handler.cfg.Multiplier)
	})
}

type tempNetError struct{}

func (tempNetError) Error() string   { return "temporary network error" }
func (tempNetError) Timeout() bool   { return false }
func (tempNetError) Temporary() bool { return true }

var _ net.Error = tempNetError{}

func TestRetryHandlerDo(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{MaxRetries: 3})

		callCount := 0
		err := handler.Do(context.Background(), func() error {
			callCount++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, callCount)
	})

	t.Run("success on retry", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 5 * time.Millisecond,
		})

		callCount := 0
		err := handler.Do(context.Background(), func() error {
			callCount++
			if callCount < 3 {
				return tempNetError{}
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, callCount)
	})

	t.Run("non-retryable error returns immediately", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond})

		callCount := 0
		wantErr := errors.New("bad request")
		err := handler.Do(context.Background(), func() error {
			callCount++
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 1, callCount)
	})

	t.Run("exhausts retries", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond})

		callCount := 0
		err := handler.Do(context.Background(), func() error {
			callCount++
			return tempNetError{}
		})
		require.Error(t, err)
		require.Equal(t, 3, callCount)
	})

	t.Run("context cancellation stops retries", func(t *testing.T) {
		handler := NewRetryHandler(RetryConfig{MaxRetries: 10, InitialBackoff: 50 * time.Millisecond})
		ctx, cancel := context.WithCancel(context.Background())

		callCount := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := handler.Do(ctx, func() error {
			callCount++
			return tempNetError{}
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"rate limited", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"request timeout", &openai.Error{StatusCode: http.StatusRequestTimeout}, true},
		{"server error", &openai.Error{StatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &openai.Error{StatusCode: http.StatusBadGateway}, true},
		{"unauthorized", &openai.Error{StatusCode: http.StatusUnauthorized}, false},
		{"bad request", &openai.Error{StatusCode: http.StatusBadRequest}, false},
		{"temporary net error", tempNetError{}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"generic", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, shouldRetry(tc.err))
		})
	}
}
