package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"finsight-api/pkg/llm"
	"finsight-api/pkg/market"
)

type fakeChat struct {
	reply   string
	err     error
	lastReq *llm.ChatRequest
	calls   int
}

func (f *fakeChat) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: f.reply}}},
	}, nil
}

func (f *fakeChat) GetConfig() *llm.Config { return nil }

func (f *fakeChat) Close() error { return nil }

type fakeProvider struct {
	metrics map[string]*market.Metrics
	errs    map[string]error
}

func (f *fakeProvider) Fetch(_ context.Context, symbol, _ string) (*market.Metrics, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.metrics[symbol], nil
}

func (f *fakeProvider) HasData(_ context.Context, symbol, _ string) (bool, error) {
	return f.metrics[symbol] != nil, nil
}

func sampleMetrics(symbol string, price float64) *market.Metrics {
	return &market.Metrics{
		Symbol:           symbol,
		LatestPrice:      price,
		ChangePercent24h: -1.25,
		AveragePrice7d:   price * 1.01,
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty records use the fixed fallback", func(t *testing.T) {
		chat := &fakeChat{}
		s := New(chat, &fakeProvider{}, "7d")
		require.Equal(t, EmptyDataSummary, s.Summarize(ctx, nil))
		require.Zero(t, chat.calls)
	})

	t.Run("renders every record into the prompt", func(t *testing.T) {
		chat := &fakeChat{reply: " Markets were calm. "}
		s := New(chat, &fakeProvider{}, "7d")

		got := s.Summarize(ctx, []market.Metrics{
			*sampleMetrics("BTC-USD", 50000),
			*sampleMetrics("TSLA", 250),
		})
		require.Equal(t, "Markets were calm.", got)
		require.Equal(t, 1, chat.calls)
		require.Len(t, chat.lastReq.Messages, 1)
		prompt := chat.lastReq.Messages[0].Content
		require.Contains(t, prompt, "BTC-USD")
		require.Contains(t, prompt, "TSLA")
		require.Contains(t, prompt, "Notable price movements")
		require.NotNil(t, chat.lastReq.Temperature)
		require.Equal(t, 0.7, *chat.lastReq.Temperature)
	})

	t.Run("chat failures map to the failure message", func(t *testing.T) {
		chat := &fakeChat{err: errors.New("rate limited")}
		s := New(chat, &fakeProvider{}, "7d")
		got := s.Summarize(ctx, []market.Metrics{*sampleMetrics("BTC-USD", 50000)})
		require.Equal(t, FailedSummary, got)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("summarizes the symbols with data", func(t *testing.T) {
		chat := &fakeChat{reply: "BTC is up."}
		provider := &fakeProvider{
			metrics: map[string]*market.Metrics{
				"BTC-USD": sampleMetrics("BTC-USD", 50000),
			},
			errs: map[string]error{"ETH-USD": errors.New("timeout")},
		}
		s := New(chat, provider, "7d")

		got := s.Run(ctx, []string{"BTC-USD", "ETH-USD", "FAKE-USD"})
		require.Equal(t, "BTC is up.", got)
		require.Contains(t, chat.lastReq.Messages[0].Content, "BTC-USD")
		require.NotContains(t, chat.lastReq.Messages[0].Content, "FAKE-USD")
	})

	t.Run("no data at all returns empty for caller fallback", func(t *testing.T) {
		chat := &fakeChat{reply: "unused"}
		s := New(chat, &fakeProvider{}, "7d")
		require.Empty(t, s.Run(ctx, []string{"FAKE-USD"}))
		require.Zero(t, chat.calls)
	})
}
