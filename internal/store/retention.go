package store

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// DefaultKeepLast is the default per-symbol history window.
const DefaultKeepLast = 10

// Trim evicts the oldest history entries for symbol until at most
// keepLast remain. Entries are ordered by timestamp with insertion id as
// the tie-breaker, so the oldest-inserted among equal timestamps goes
// first. Trimming an already-trimmed symbol is a no-op.
func (s *Store) Trim(ctx context.Context, symbol string, keepLast int) error {
	if keepLast <= 0 {
		keepLast = s.keepLast
	}

	rows, err := s.metrics.ListHistory(ctx, symbol)
	if err != nil {
		return err
	}
	if len(rows) <= keepLast {
		return nil
	}

	evict := rows[:len(rows)-keepLast]
	ids := make([]int64, 0, len(evict))
	for _, row := range evict {
		ids = append(ids, row.ID)
	}
	logx.WithContext(ctx).Infof("store: trimming history symbol=%s evict=%d keep=%d", symbol, len(ids), keepLast)
	return s.metrics.DeleteHistory(ctx, ids)
}

// TrimBatch applies Trim independently per symbol. One symbol's failure
// does not block the rest.
func (s *Store) TrimBatch(ctx context.Context, symbols []string, keepLast int) {
	for _, symbol := range symbols {
		if err := s.Trim(ctx, symbol, keepLast); err != nil {
			logx.WithContext(ctx).Errorf("store: trim batch symbol=%s err=%v", symbol, err)
		}
	}
}
