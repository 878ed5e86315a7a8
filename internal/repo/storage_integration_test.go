//go:build integration
// +build integration

package repo_test

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "finsight-api/internal/cache"
	"finsight-api/internal/config"
	"finsight-api/internal/repo"
)

// Run with: FINSIGHT_PG_DSN=postgres://... go test -tags integration ./internal/repo/
// Assumes scripts/schema.sql has been applied. Tests truncate the metric
// tables, so never point the DSN at a database with real data.

func newIntegrationSet(t *testing.T) *repo.Set {
	t.Helper()

	dsn := os.Getenv("FINSIGHT_PG_DSN")
	if dsn == "" {
		t.Skip("Postgres not configured (FINSIGHT_PG_DSN unset)")
	}

	set, err := repo.New(repo.Dependencies{
		Conn: sqlx.NewSqlConn("pgx", dsn),
		TTL:  cachekeys.NewTTLSet(config.CacheTTL{Short: 10, Medium: 60, Long: 300}),
	})
	require.NoError(t, err, "failed to build repository set")
	return set
}

func TestPostgresConnectivity(t *testing.T) {
	set := newIntegrationSet(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := set.Symbols.Load(ctx)
	assert.NoError(t, err, "postgres connectivity check failed")
}

func TestSymbolsRoundTrip(t *testing.T) {
	set := newIntegrationSet(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	want := []string{"BTC-USD", "ETH-USD", "TSLA"}
	require.NoError(t, set.Symbols.Save(ctx, want))

	got, err := set.Symbols.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMetricsRoundTrip(t *testing.T) {
	set := newIntegrationSet(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, set.Metrics.Reset(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	row := repo.CurrentRow{
		Symbol:           "BTC-USD",
		LatestPrice:      50000,
		ChangePercent24h: 1.5,
		AveragePrice7d:   49500,
		UpdatedAt:        now,
	}
	require.NoError(t, set.Metrics.UpsertCurrent(ctx, row))

	cur, err := set.Metrics.GetCurrent(ctx, "BTC-USD")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, row.LatestPrice, cur.LatestPrice)

	// Upsert replaces rather than duplicates.
	row.LatestPrice = 51000
	require.NoError(t, set.Metrics.UpsertCurrent(ctx, row))
	all, err := set.Metrics.ListCurrent(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 51000.0, all[0].LatestPrice)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := set.Metrics.InsertHistory(ctx, repo.HistoryRow{
			Symbol:           "BTC-USD",
			LatestPrice:      50000 + float64(i),
			ChangePercent24h: 1.5,
			AveragePrice7d:   49500,
			Ts:               now.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := set.Metrics.RecentHistory(ctx, "BTC-USD", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 50002.0, recent[0].LatestPrice, "newest snapshot first")

	require.NoError(t, set.Metrics.DeleteHistory(ctx, ids[:1]))
	remaining, err := set.Metrics.ListHistory(ctx, "BTC-USD")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	require.NoError(t, set.Metrics.Reset(ctx))
}
