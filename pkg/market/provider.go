package market

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/pkg/market/yahoo"
)

const defaultRequestTimeout = 8 * time.Second

// YahooProvider implements Provider on top of the Yahoo Finance chart API.
type YahooProvider struct {
	client  *yahoo.Client
	timeout time.Duration
}

// ProviderOption customises the Yahoo provider.
type ProviderOption func(*YahooProvider)

// WithClient injects a custom Yahoo client.
func WithClient(client *yahoo.Client) ProviderOption {
	return func(p *YahooProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *YahooProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// NewYahooProvider constructs a default provider.
func NewYahooProvider(opts ...ProviderOption) *YahooProvider {
	p := &YahooProvider{
		client:  yahoo.NewClient(),
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch derives {latest, 24h change, period average} from daily closes.
// A window with fewer than two closes has no previous close to diff
// against and is reported as empty.
func (p *YahooProvider) Fetch(ctx context.Context, symbol, period string) (*Metrics, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	bars, err := p.client.DailyCloses(ctx, symbol, rangeFor(period))
	if err != nil {
		return nil, err
	}
	bars = tail(bars, daysFor(period))
	if len(bars) < 2 {
		logx.WithContext(ctx).Infof("market: no usable data symbol=%s period=%s bars=%d", symbol, period, len(bars))
		return nil, nil
	}

	latest := bars[len(bars)-1].Close
	prev := bars[len(bars)-2].Close
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}

	return &Metrics{
		Symbol:           symbol,
		LatestPrice:      latest,
		ChangePercent24h: (latest - prev) / prev * 100,
		AveragePrice7d:   sum / float64(len(bars)),
	}, nil
}

// HasData probes the source for any bars in the window.
func (p *YahooProvider) HasData(ctx context.Context, symbol, period string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	bars, err := p.client.DailyCloses(ctx, symbol, rangeFor(period))
	if err != nil {
		return false, err
	}
	return len(bars) > 0, nil
}

// rangeFor maps a lookback period to a supported Yahoo range string. The
// chart API has no "7d" range, so week-scale lookbacks request a month of
// daily bars and trim client-side.
func rangeFor(period string) string {
	switch period {
	case "", "1d":
		return "1d"
	case "5d":
		return "5d"
	default:
		return "1mo"
	}
}

// daysFor returns how many trailing bars a period needs, 0 for no trim.
func daysFor(period string) int {
	switch period {
	case "7d":
		return 7
	default:
		return 0
	}
}

func tail(bars []yahoo.Bar, n int) []yahoo.Bar {
	if n <= 0 || len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
