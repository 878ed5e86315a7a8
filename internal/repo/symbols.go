package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "finsight-api/internal/cache"
)

// SymbolsRepo persists the tracked-symbol set as a single document row so
// the whole set is always replaced atomically.
type SymbolsRepo interface {
	// Load returns the tracked set, or an empty slice when none was
	// ever persisted.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the tracked set.
	Save(ctx context.Context, symbols []string) error
}

type pgSymbolsRepo struct {
	conn  sqlx.SqlConn
	cache gocache.Cache
	ttl   cachekeys.TTLSet
}

func newSymbolsRepo(deps Dependencies) SymbolsRepo {
	return &pgSymbolsRepo{conn: deps.Conn, cache: deps.Cache, ttl: deps.TTL}
}

func (r *pgSymbolsRepo) Load(ctx context.Context) ([]string, error) {
	if r.cache != nil {
		var cached []string
		if err := r.cache.GetCtx(ctx, cachekeys.TrackedSymbolsKey(), &cached); err == nil {
			return cached, nil
		} else if !r.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("symbols: cache get err=%v", err)
		}
	}

	var raw string
	const q = `SELECT symbols FROM tracked_symbols WHERE id = 1`
	if err := r.conn.QueryRowCtx(ctx, &raw, q); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("symbols: load: %w", err)
	}

	var symbols []string
	if err := json.Unmarshal([]byte(raw), &symbols); err != nil {
		return nil, fmt.Errorf("symbols: decode: %w", err)
	}
	r.cacheSet(ctx, symbols)
	return symbols, nil
}

func (r *pgSymbolsRepo) Save(ctx context.Context, symbols []string) error {
	raw, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("symbols: encode: %w", err)
	}
	const stmt = `
INSERT INTO tracked_symbols (id, symbols, updated_at)
VALUES (1, $1, NOW())
ON CONFLICT (id) DO UPDATE SET
    symbols = EXCLUDED.symbols,
    updated_at = NOW();`
	if _, err := r.conn.ExecCtx(ctx, stmt, string(raw)); err != nil {
		return fmt.Errorf("symbols: save: %w", err)
	}
	r.cacheSet(ctx, symbols)
	return nil
}

func (r *pgSymbolsRepo) cacheSet(ctx context.Context, symbols []string) {
	if r.cache == nil {
		return
	}
	ttl := cachekeys.TrackedSymbolsTTL(r.ttl)
	if ttl <= 0 {
		return
	}
	if err := r.cache.SetWithExpireCtx(ctx, cachekeys.TrackedSymbolsKey(), symbols, ttl); err != nil {
		logx.WithContext(ctx).Errorf("symbols: cache set err=%v", err)
	}
}
