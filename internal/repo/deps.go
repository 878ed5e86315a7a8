package repo

import (
	"errors"

	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "finsight-api/internal/cache"
)

// Dependencies bundles the shared infrastructure required by repository
// implementations. Cache may be nil; repositories then skip cache hooks.
type Dependencies struct {
	Conn  sqlx.SqlConn
	Cache gocache.Cache
	TTL   cachekeys.TTLSet
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Symbols SymbolsRepo
	Metrics MetricsRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.Conn == nil {
		return nil, errors.New("repo: missing Conn dependency")
	}
	return &Set{
		Symbols: newSymbolsRepo(deps),
		Metrics: newMetricsRepo(deps),
	}, nil
}
