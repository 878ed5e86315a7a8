package market

import "context"

// Metrics is the normalized market view for a single symbol over a
// lookback period.
type Metrics struct {
	Symbol           string
	LatestPrice      float64
	ChangePercent24h float64
	AveragePrice7d   float64
}

// Provider exposes source-agnostic market data.
//
// Fetch returns (nil, nil) when the source has no data for the symbol, so
// callers can distinguish "nothing there" from a transport failure. Batch
// callers treat both outcomes as an empty result.
type Provider interface {
	// Fetch computes metrics for symbol over the given lookback period
	// (e.g. "7d"). Requires at least two closes in the window.
	Fetch(ctx context.Context, symbol, period string) (*Metrics, error)
	// HasData reports whether the source returned any bars for symbol
	// over the given lookback period.
	HasData(ctx context.Context, symbol, period string) (bool, error)
}
