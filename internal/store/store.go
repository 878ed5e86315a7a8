package store

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/repo"
	"finsight-api/pkg/market"
)

// MetricValues are the per-snapshot metric fields.
type MetricValues struct {
	LatestPrice      float64
	ChangePercent24h float64
	AveragePrice7d   float64
}

// CurrentMetrics is the single current-state record for a symbol.
type CurrentMetrics struct {
	Symbol           string
	LatestPrice      float64
	ChangePercent24h float64
	AveragePrice7d   float64
	LastUpdated      time.Time
}

// HistoryEntry is one snapshot in a symbol's append-only history.
type HistoryEntry struct {
	ID        int64
	Symbol    string
	Timestamp time.Time
	Metrics   MetricValues
}

// Store owns current-state and history persistence for asset metrics.
// Write errors are logged and swallowed at this boundary: losing one
// write must not abort a batch of otherwise-independent writes.
type Store struct {
	metrics  repo.MetricsRepo
	keepLast int
	now      func() time.Time
}

// Option customises the store.
type Option func(*Store)

// WithClock overrides the timestamp source (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a store with the given per-symbol retention window.
func New(metrics repo.MetricsRepo, keepLast int, opts ...Option) *Store {
	if keepLast <= 0 {
		keepLast = DefaultKeepLast
	}
	s := &Store{metrics: metrics, keepLast: keepLast, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KeepLast returns the configured retention window.
func (s *Store) KeepLast() int {
	return s.keepLast
}

// WriteSnapshot records one fetch result: it upserts the current-state
// record, appends a history entry, and runs a retention pass for the
// symbol. This is the only write entry point for orchestrators, so
// current and history never diverge. The returned record carries the
// freshly stamped timestamp.
func (s *Store) WriteSnapshot(ctx context.Context, m *market.Metrics) *CurrentMetrics {
	ts := s.now()

	if err := s.metrics.UpsertCurrent(ctx, repo.CurrentRow{
		Symbol:           m.Symbol,
		LatestPrice:      m.LatestPrice,
		ChangePercent24h: m.ChangePercent24h,
		AveragePrice7d:   m.AveragePrice7d,
		UpdatedAt:        ts,
	}); err != nil {
		logx.WithContext(ctx).Errorf("store: upsert current symbol=%s err=%v", m.Symbol, err)
	}

	if _, err := s.metrics.InsertHistory(ctx, repo.HistoryRow{
		Symbol:           m.Symbol,
		LatestPrice:      m.LatestPrice,
		ChangePercent24h: m.ChangePercent24h,
		AveragePrice7d:   m.AveragePrice7d,
		Ts:               ts,
	}); err != nil {
		logx.WithContext(ctx).Errorf("store: append history symbol=%s err=%v", m.Symbol, err)
	}

	if err := s.Trim(ctx, m.Symbol, s.keepLast); err != nil {
		logx.WithContext(ctx).Errorf("store: trim history symbol=%s err=%v", m.Symbol, err)
	}

	return &CurrentMetrics{
		Symbol:           m.Symbol,
		LatestPrice:      m.LatestPrice,
		ChangePercent24h: m.ChangePercent24h,
		AveragePrice7d:   m.AveragePrice7d,
		LastUpdated:      ts,
	}
}

// ListCurrent returns all current-state records.
func (s *Store) ListCurrent(ctx context.Context) ([]CurrentMetrics, error) {
	rows, err := s.metrics.ListCurrent(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CurrentMetrics, 0, len(rows))
	for _, row := range rows {
		out = append(out, currentFromRow(row))
	}
	return out, nil
}

// GetCurrent returns the current-state record for symbol, or nil.
func (s *Store) GetCurrent(ctx context.Context, symbol string) (*CurrentMetrics, error) {
	row, err := s.metrics.GetCurrent(ctx, symbol)
	if err != nil || row == nil {
		return nil, err
	}
	m := currentFromRow(*row)
	return &m, nil
}

// GetHistory returns up to limit entries for symbol, newest first.
func (s *Store) GetHistory(ctx context.Context, symbol string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = s.keepLast
	}
	rows, err := s.metrics.RecentHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryEntry{
			ID:        row.ID,
			Symbol:    row.Symbol,
			Timestamp: row.Ts,
			Metrics: MetricValues{
				LatestPrice:      row.LatestPrice,
				ChangePercent24h: row.ChangePercent24h,
				AveragePrice7d:   row.AveragePrice7d,
			},
		})
	}
	return out, nil
}

func currentFromRow(row repo.CurrentRow) CurrentMetrics {
	return CurrentMetrics{
		Symbol:           row.Symbol,
		LatestPrice:      row.LatestPrice,
		ChangePercent24h: row.ChangePercent24h,
		AveragePrice7d:   row.AveragePrice7d,
		LastUpdated:      row.UpdatedAt,
	}
}
