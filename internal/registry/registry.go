package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/repo"
	"finsight-api/pkg/market"
)

// DefaultSymbols seed the tracked set on first access to an empty store.
var DefaultSymbols = []string{"BTC-USD", "ETH-USD", "TSLA"}

const (
	cryptoSuffix    = "-USD"
	existencePeriod = "1d"
)

var (
	// ErrInvalidFormat reports a symbol that fails the syntactic check.
	ErrInvalidFormat = errors.New("invalid symbol format")
	// ErrUnknownSymbol reports a symbol the data source has no data for.
	ErrUnknownSymbol = errors.New("symbol does not exist or is not valid")
)

// Registry maintains the tracked-symbol set. All read-modify-write
// cycles on the set run under a single mutex so concurrent registrations
// union instead of overwriting each other.
type Registry struct {
	symbols  repo.SymbolsRepo
	provider market.Provider

	mu sync.Mutex
}

// New constructs a registry over the given symbol repo and data source.
func New(symbols repo.SymbolsRepo, provider market.Provider) *Registry {
	return &Registry{symbols: symbols, provider: provider}
}

// ValidateFormat reports whether symbol has one of the two accepted
// shapes: a crypto pair ending in "-USD", or an all-uppercase equity
// ticker. Pure syntactic check, no I/O.
func ValidateFormat(symbol string) bool {
	if strings.HasSuffix(symbol, cryptoSuffix) {
		return true
	}
	hasUpper := false
	for _, r := range symbol {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// ValidateExistence reports whether the data source has any data for
// symbol over a short lookback window. Any source failure counts as
// "does not exist".
func (r *Registry) ValidateExistence(ctx context.Context, symbol string) bool {
	ok, err := r.provider.HasData(ctx, symbol, existencePeriod)
	if err != nil {
		logx.WithContext(ctx).Infof("registry: existence check failed symbol=%s err=%v", symbol, err)
		return false
	}
	return ok
}

// ListSymbols returns all tracked symbols. First access against an empty
// store seeds and persists the default set.
func (r *Registry) ListSymbols(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked(ctx)
}

func (r *Registry) listLocked(ctx context.Context) ([]string, error) {
	symbols, err := r.symbols.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(symbols) > 0 {
		return symbols, nil
	}

	seeded := append([]string(nil), DefaultSymbols...)
	if err := r.symbols.Save(ctx, seeded); err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Infof("registry: seeded default symbols %v", seeded)
	return seeded, nil
}

// Register admits the format- and existence-valid subset of symbols into
// the tracked set and returns the full updated set. When nothing is
// admissible the tracked set is left unchanged and an empty slice is
// returned. Existence checks fan out concurrently; the set union runs
// under the registry mutex so overlapping calls never lose a symbol.
func (r *Registry) Register(ctx context.Context, symbols []string) ([]string, error) {
	formatValid := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if ValidateFormat(s) {
			formatValid = append(formatValid, s)
		}
	}
	if len(formatValid) == 0 {
		logx.WithContext(ctx).Info("registry: no symbols passed format validation")
		return nil, nil
	}

	exists := make([]bool, len(formatValid))
	var wg sync.WaitGroup
	for i, s := range formatValid {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			exists[i] = r.ValidateExistence(ctx, s)
		}(i, s)
	}
	wg.Wait()

	valid := make([]string, 0, len(formatValid))
	for i, s := range formatValid {
		if exists[i] {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		logx.WithContext(ctx).Info("registry: no symbols passed existence validation")
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.listLocked(ctx)
	if err != nil {
		return nil, err
	}
	updated := union(existing, valid)
	if err := r.symbols.Save(ctx, updated); err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Infof("registry: symbols updated new=%v total=%d", valid, len(updated))
	return updated, nil
}

// Add admits a single symbol, revalidating format and existence. Used by
// ingestion after a successful fetch.
func (r *Registry) Add(ctx context.Context, symbol string) error {
	if !ValidateFormat(symbol) {
		return ErrInvalidFormat
	}
	if !r.ValidateExistence(ctx, symbol) {
		return ErrUnknownSymbol
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.listLocked(ctx)
	if err != nil {
		return err
	}
	updated := union(existing, []string{symbol})
	if len(updated) == len(existing) {
		return nil
	}
	return r.symbols.Save(ctx, updated)
}

// union appends the members of extra not already present, preserving
// insertion order.
func union(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range extra {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
