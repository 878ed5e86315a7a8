package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/registry"
	"finsight-api/internal/store"
	"finsight-api/pkg/market"
)

// Service coordinates fetches from the data source with snapshot writes
// and symbol registration. It owns no persistent state of its own.
type Service struct {
	provider market.Provider
	store    *store.Store
	registry *registry.Registry
	period   string
}

// NewService wires the orchestrators.
func NewService(provider market.Provider, st *store.Store, reg *registry.Registry, period string) *Service {
	if period == "" {
		period = "7d"
	}
	return &Service{provider: provider, store: st, registry: reg, period: period}
}

// Result pairs an input symbol with its snapshot. Metrics is nil when
// the fetch produced nothing, leaving a placeholder for that symbol.
type Result struct {
	Symbol  string
	Metrics *store.CurrentMetrics
}

// BatchResult reports per-symbol ingestion outcomes.
type BatchResult struct {
	Message         string
	UpdatedCount    int
	SuccessMessages []string
	ErrorMessages   []string
	UpdatedAssets   []string
}

// FetchAndSnapshot fetches metrics for symbol and, when the source has
// data, writes the snapshot and returns the stamped current record.
// Empty results and fetch failures both yield nil; nothing is written.
func (s *Service) FetchAndSnapshot(ctx context.Context, symbol string) *store.CurrentMetrics {
	m, err := s.provider.Fetch(ctx, symbol, s.period)
	if err != nil {
		logx.WithContext(ctx).Errorf("asset: fetch failed symbol=%s err=%v", symbol, err)
		return nil
	}
	if m == nil || m.Symbol == "" {
		return nil
	}
	return s.store.WriteSnapshot(ctx, m)
}

// Refresh fetches every symbol concurrently and snapshots the successes.
// Individual failures are skipped silently; Refresh returns once every
// fetch has resolved.
func (s *Service) Refresh(ctx context.Context, symbols []string) {
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			s.FetchAndSnapshot(ctx, symbol)
		}(symbol)
	}
	wg.Wait()
}

// AddAssets runs FetchAndSnapshot for every symbol concurrently. The
// returned slice has exactly one entry per input symbol in input order;
// failed fetches leave a placeholder carrying only the symbol.
func (s *Service) AddAssets(ctx context.Context, symbols []string) []Result {
	results := make([]Result, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i] = Result{Symbol: symbol, Metrics: s.FetchAndSnapshot(ctx, symbol)}
		}(i, symbol)
	}
	wg.Wait()
	return results
}

// Ingest processes symbols strictly in order, one at a time: each
// symbol's registration must observe the previous symbols' effects, so
// this deliberately does not fan out. Per-symbol failures become error
// messages; the batch always runs to completion.
func (s *Service) Ingest(ctx context.Context, symbols []string) *BatchResult {
	batchID := uuid.NewString()
	logx.WithContext(ctx).Infof("asset: ingest start batch=%s symbols=%d", batchID, len(symbols))

	tracked := make(map[string]struct{})
	if existing, err := s.registry.ListSymbols(ctx); err != nil {
		// Membership is advisory; ingestion proceeds and treats every
		// symbol as new.
		logx.WithContext(ctx).Errorf("asset: ingest list symbols batch=%s err=%v", batchID, err)
	} else {
		for _, sym := range existing {
			tracked[sym] = struct{}{}
		}
	}

	result := &BatchResult{
		SuccessMessages: []string{},
		ErrorMessages:   []string{},
		UpdatedAssets:   []string{},
	}
	for _, symbol := range symbols {
		s.ingestOne(ctx, symbol, tracked, result)
	}
	result.Message = fmt.Sprintf("Processed %d symbols", len(symbols))
	logx.WithContext(ctx).Infof("asset: ingest done batch=%s updated=%d errors=%d",
		batchID, result.UpdatedCount, len(result.ErrorMessages))
	return result
}

func (s *Service) ingestOne(ctx context.Context, symbol string, tracked map[string]struct{}, result *BatchResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.WithContext(ctx).Errorf("asset: ingest panic symbol=%s err=%v", symbol, rec)
			result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("Error processing %s: %v", symbol, rec))
		}
	}()

	snapshot := s.FetchAndSnapshot(ctx, symbol)
	if snapshot == nil {
		result.ErrorMessages = append(result.ErrorMessages, fmt.Sprintf("Could not fetch data for %s", symbol))
		return
	}

	if _, ok := tracked[symbol]; !ok {
		if err := s.registry.Add(ctx, symbol); err != nil {
			result.ErrorMessages = append(result.ErrorMessages, addFailureMessage(symbol, err))
			return
		}
		tracked[symbol] = struct{}{}
		result.SuccessMessages = append(result.SuccessMessages, fmt.Sprintf("Successfully added %s with metadata", symbol))
	} else {
		result.SuccessMessages = append(result.SuccessMessages, fmt.Sprintf("Updated %s", symbol))
	}

	result.UpdatedCount++
	result.UpdatedAssets = append(result.UpdatedAssets, symbol)
}

func addFailureMessage(symbol string, err error) string {
	switch {
	case errors.Is(err, registry.ErrInvalidFormat):
		return fmt.Sprintf("Invalid symbol format: %s", symbol)
	case errors.Is(err, registry.ErrUnknownSymbol):
		return fmt.Sprintf("Symbol does not exist or is not valid: %s", symbol)
	default:
		return fmt.Sprintf("Error adding symbol %s: %v", symbol, err)
	}
}
