package summary

import (
	"context"
	"strings"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/pkg/llm"
	"finsight-api/pkg/market"
)

const (
	// EmptyDataSummary is returned when there is nothing to summarize.
	EmptyDataSummary = "No valid financial data to summarize."
	// FailedSummary is returned when the language model call fails.
	FailedSummary = "Summary generation failed due to an error."

	defaultTemperature = 0.7
)

var summaryPrompt = llm.MustPromptTemplate("summary", `Analyze the following financial data and provide a concise summary:
{{range .Records}}- {{.Symbol}}: latest price {{printf "%.4f" .LatestPrice}}, 24h change {{printf "%.2f" .ChangePercent24h}}%, 7-day average {{printf "%.4f" .AveragePrice7d}}
{{end}}
Focus on:
1. Notable price movements
2. Significant changes in 24h
3. Comparison with 7-day averages

Summary:`)

// Summarizer turns per-symbol metrics into a natural-language digest via
// the language-model client.
type Summarizer struct {
	client   llm.ChatClient
	provider market.Provider
	period   string
}

// New constructs a summarizer. The provider supplies fresh metrics for
// Run; Summarize works on caller-supplied records.
func New(client llm.ChatClient, provider market.Provider, period string) *Summarizer {
	if period == "" {
		period = "7d"
	}
	return &Summarizer{client: client, provider: provider, period: period}
}

// Run fetches metrics for all symbols concurrently, drops empty results,
// and summarizes the rest. Returns "" when no symbol produced data, so
// callers can apply their own fallback copy.
func (s *Summarizer) Run(ctx context.Context, symbols []string) string {
	fetched := make([]*market.Metrics, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			m, err := s.provider.Fetch(ctx, symbol, s.period)
			if err != nil {
				logx.WithContext(ctx).Errorf("summary: fetch failed symbol=%s err=%v", symbol, err)
				return
			}
			fetched[i] = m
		}(i, symbol)
	}
	wg.Wait()

	records := make([]market.Metrics, 0, len(fetched))
	for _, m := range fetched {
		if m != nil && m.Symbol != "" {
			records = append(records, *m)
		}
	}
	if len(records) == 0 {
		logx.WithContext(ctx).Error("summary: no valid financial data fetched for any symbol")
		return ""
	}
	return s.Summarize(ctx, records)
}

// Summarize produces a digest for the given records. Failures never
// propagate; they map to fixed fallback strings.
func (s *Summarizer) Summarize(ctx context.Context, records []market.Metrics) string {
	if len(records) == 0 {
		return EmptyDataSummary
	}

	prompt, err := summaryPrompt.Render(map[string]any{"Records": records})
	if err != nil {
		logx.WithContext(ctx).Errorf("summary: render prompt err=%v", err)
		return FailedSummary
	}

	temperature := defaultTemperature
	resp, err := s.client.Chat(ctx, &llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		logx.WithContext(ctx).Errorf("summary: chat err=%v", err)
		return FailedSummary
	}
	return strings.TrimSpace(resp.Text())
}
