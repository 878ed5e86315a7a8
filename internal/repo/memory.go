package repo

import (
	"context"
	"sort"
	"sync"
)

// NewMemorySet returns a repository set backed by process memory. Used
// when no Postgres DSN is configured (test environments and local
// development) and by package tests.
func NewMemorySet() *Set {
	return &Set{
		Symbols: NewMemorySymbols(),
		Metrics: NewMemoryMetrics(),
	}
}

// MemorySymbolsRepo is an in-memory SymbolsRepo.
type MemorySymbolsRepo struct {
	mu      sync.Mutex
	symbols []string
}

func NewMemorySymbols() *MemorySymbolsRepo {
	return &MemorySymbolsRepo{}
}

func (m *MemorySymbolsRepo) Load(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.symbols...), nil
}

func (m *MemorySymbolsRepo) Save(_ context.Context, symbols []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append([]string(nil), symbols...)
	return nil
}

// MemoryMetricsRepo is an in-memory MetricsRepo. History IDs are
// assigned from a monotonically increasing counter, matching the
// insertion-order semantics of the Postgres bigserial column.
type MemoryMetricsRepo struct {
	mu      sync.Mutex
	current map[string]CurrentRow
	history []HistoryRow
	nextID  int64
}

func NewMemoryMetrics() *MemoryMetricsRepo {
	return &MemoryMetricsRepo{current: make(map[string]CurrentRow), nextID: 1}
}

func (m *MemoryMetricsRepo) UpsertCurrent(_ context.Context, row CurrentRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[row.Symbol] = row
	return nil
}

func (m *MemoryMetricsRepo) GetCurrent(_ context.Context, symbol string) (*CurrentRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.current[symbol]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *MemoryMetricsRepo) ListCurrent(context.Context) ([]CurrentRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CurrentRow, 0, len(m.current))
	for _, row := range m.current {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *MemoryMetricsRepo) InsertHistory(_ context.Context, row HistoryRow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.nextID
	m.nextID++
	m.history = append(m.history, row)
	return row.ID, nil
}

func (m *MemoryMetricsRepo) ListHistory(_ context.Context, symbol string) ([]HistoryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []HistoryRow
	for _, row := range m.history {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ts.Equal(out[j].Ts) {
			return out[i].ID < out[j].ID
		}
		return out[i].Ts.Before(out[j].Ts)
	})
	return out, nil
}

func (m *MemoryMetricsRepo) RecentHistory(ctx context.Context, symbol string, limit int) ([]HistoryRow, error) {
	rows, err := m.ListHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryRow, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryMetricsRepo) DeleteHistory(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := m.history[:0]
	for _, row := range m.history {
		if _, ok := drop[row.ID]; !ok {
			kept = append(kept, row)
		}
	}
	m.history = kept
	return nil
}

func (m *MemoryMetricsRepo) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = make(map[string]CurrentRow)
	m.history = nil
	m.nextID = 1
	return nil
}
