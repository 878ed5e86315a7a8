package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "finsight-api/internal/cache"
)

// CurrentRow is the single current-state record per symbol.
type CurrentRow struct {
	Symbol           string    `db:"symbol"`
	LatestPrice      float64   `db:"latest_price"`
	ChangePercent24h float64   `db:"change_percent_24h"`
	AveragePrice7d   float64   `db:"average_price_7d"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// HistoryRow is one append-only snapshot. ID is the stable identifier
// assigned at insertion and used for targeted removal.
type HistoryRow struct {
	ID               int64     `db:"id"`
	Symbol           string    `db:"symbol"`
	LatestPrice      float64   `db:"latest_price"`
	ChangePercent24h float64   `db:"change_percent_24h"`
	AveragePrice7d   float64   `db:"average_price_7d"`
	Ts               time.Time `db:"ts"`
}

// MetricsRepo owns current-metrics and history persistence.
type MetricsRepo interface {
	UpsertCurrent(ctx context.Context, row CurrentRow) error
	// GetCurrent returns (nil, nil) when the symbol has no record.
	GetCurrent(ctx context.Context, symbol string) (*CurrentRow, error)
	ListCurrent(ctx context.Context) ([]CurrentRow, error)
	InsertHistory(ctx context.Context, row HistoryRow) (int64, error)
	// ListHistory returns all entries for symbol ordered oldest first,
	// ties broken by insertion id. Used by the retention pass.
	ListHistory(ctx context.Context, symbol string) ([]HistoryRow, error)
	// RecentHistory returns up to limit entries ordered newest first.
	RecentHistory(ctx context.Context, symbol string, limit int) ([]HistoryRow, error)
	DeleteHistory(ctx context.Context, ids []int64) error
	// Reset truncates all tables. Test and tooling use only.
	Reset(ctx context.Context) error
}

type pgMetricsRepo struct {
	conn  sqlx.SqlConn
	cache gocache.Cache
	ttl   cachekeys.TTLSet
}

func newMetricsRepo(deps Dependencies) MetricsRepo {
	return &pgMetricsRepo{conn: deps.Conn, cache: deps.Cache, ttl: deps.TTL}
}

func (r *pgMetricsRepo) UpsertCurrent(ctx context.Context, row CurrentRow) error {
	const stmt = `
INSERT INTO asset_current (symbol, latest_price, change_percent_24h, average_price_7d, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (symbol) DO UPDATE SET
    latest_price = EXCLUDED.latest_price,
    change_percent_24h = EXCLUDED.change_percent_24h,
    average_price_7d = EXCLUDED.average_price_7d,
    updated_at = EXCLUDED.updated_at;`
	if _, err := r.conn.ExecCtx(ctx, stmt,
		row.Symbol, row.LatestPrice, row.ChangePercent24h, row.AveragePrice7d, row.UpdatedAt,
	); err != nil {
		return fmt.Errorf("metrics: upsert current %s: %w", row.Symbol, err)
	}
	r.cachePrice(ctx, row)
	return nil
}

func (r *pgMetricsRepo) GetCurrent(ctx context.Context, symbol string) (*CurrentRow, error) {
	var row CurrentRow
	const q = `SELECT symbol, latest_price, change_percent_24h, average_price_7d, updated_at
FROM asset_current WHERE symbol = $1`
	if err := r.conn.QueryRowCtx(ctx, &row, q, symbol); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("metrics: get current %s: %w", symbol, err)
	}
	return &row, nil
}

func (r *pgMetricsRepo) ListCurrent(ctx context.Context) ([]CurrentRow, error) {
	var rows []CurrentRow
	const q = `SELECT symbol, latest_price, change_percent_24h, average_price_7d, updated_at
FROM asset_current ORDER BY symbol`
	if err := r.conn.QueryRowsCtx(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("metrics: list current: %w", err)
	}
	return rows, nil
}

func (r *pgMetricsRepo) InsertHistory(ctx context.Context, row HistoryRow) (int64, error) {
	var id int64
	const q = `
INSERT INTO asset_history (symbol, latest_price, change_percent_24h, average_price_7d, ts)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	if err := r.conn.QueryRowCtx(ctx, &id, q,
		row.Symbol, row.LatestPrice, row.ChangePercent24h, row.AveragePrice7d, row.Ts,
	); err != nil {
		return 0, fmt.Errorf("metrics: insert history %s: %w", row.Symbol, err)
	}
	return id, nil
}

func (r *pgMetricsRepo) ListHistory(ctx context.Context, symbol string) ([]HistoryRow, error) {
	var rows []HistoryRow
	const q = `SELECT id, symbol, latest_price, change_percent_24h, average_price_7d, ts
FROM asset_history WHERE symbol = $1 ORDER BY ts ASC, id ASC`
	if err := r.conn.QueryRowsCtx(ctx, &rows, q, symbol); err != nil {
		return nil, fmt.Errorf("metrics: list history %s: %w", symbol, err)
	}
	return rows, nil
}

func (r *pgMetricsRepo) RecentHistory(ctx context.Context, symbol string, limit int) ([]HistoryRow, error) {
	var rows []HistoryRow
	const q = `SELECT id, symbol, latest_price, change_percent_24h, average_price_7d, ts
FROM asset_history WHERE symbol = $1 ORDER BY ts DESC, id DESC LIMIT $2`
	if err := r.conn.QueryRowsCtx(ctx, &rows, q, symbol, limit); err != nil {
		return nil, fmt.Errorf("metrics: recent history %s: %w", symbol, err)
	}
	return rows, nil
}

func (r *pgMetricsRepo) DeleteHistory(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	stmt := fmt.Sprintf(`DELETE FROM asset_history WHERE id IN (%s)`, strings.Join(placeholders, ", "))
	if _, err := r.conn.ExecCtx(ctx, stmt, args...); err != nil {
		return fmt.Errorf("metrics: delete history: %w", err)
	}
	return nil
}

func (r *pgMetricsRepo) Reset(ctx context.Context) error {
	const stmt = `TRUNCATE asset_current, asset_history, tracked_symbols`
	if _, err := r.conn.ExecCtx(ctx, stmt); err != nil {
		return fmt.Errorf("metrics: reset: %w", err)
	}
	return nil
}

func (r *pgMetricsRepo) cachePrice(ctx context.Context, row CurrentRow) {
	if r.cache == nil {
		return
	}
	ttl := cachekeys.PriceTTL(r.ttl)
	if ttl <= 0 {
		return
	}
	payload := map[string]any{
		"price": row.LatestPrice,
		"ts":    row.UpdatedAt.UTC().UnixMilli(),
	}
	key := cachekeys.PriceLatestKey(row.Symbol)
	if err := r.cache.SetWithExpireCtx(ctx, key, payload, ttl); err != nil {
		logx.WithContext(ctx).Errorf("metrics: cache price key=%s err=%v", key, err)
	}
}
