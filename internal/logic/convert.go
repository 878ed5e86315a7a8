package logic

import (
	"time"

	"finsight-api/internal/store"
	"finsight-api/internal/types"
)

func assetFromCurrent(m store.CurrentMetrics) types.Asset {
	a := types.Asset{
		Symbol:           m.Symbol,
		LatestPrice:      f64ptr(m.LatestPrice),
		ChangePercent24h: f64ptr(m.ChangePercent24h),
		AveragePrice7d:   f64ptr(m.AveragePrice7d),
	}
	if !m.LastUpdated.IsZero() {
		a.LastUpdated = m.LastUpdated.Format(time.RFC3339)
	}
	return a
}

func f64ptr(v float64) *float64 {
	return &v
}
