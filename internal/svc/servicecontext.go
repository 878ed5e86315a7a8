package svc

import (
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	"finsight-api/internal/asset"
	cachekeys "finsight-api/internal/cache"
	"finsight-api/internal/config"
	"finsight-api/internal/registry"
	"finsight-api/internal/repo"
	"finsight-api/internal/store"
	"finsight-api/internal/summary"
	"finsight-api/pkg/llm"
	"finsight-api/pkg/market"
)

// ServiceContext holds the wired dependencies shared by all handlers.
type ServiceContext struct {
	Config     *config.Config
	Repos      *repo.Set
	Store      *store.Store
	Registry   *registry.Registry
	Assets     *asset.Service
	Provider   market.Provider
	Summarizer *summary.Summarizer

	llmClient llm.ChatClient
}

func NewServiceContext(c *config.Config) (*ServiceContext, error) {
	var repos *repo.Set
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)

		var cch gocache.Cache
		if len(c.Cache) > 0 {
			cch = gocache.New(c.Cache, syncx.NewSingleFlight(), gocache.NewStat(cachekeys.Namespace), sqlx.ErrNotFound)
		}

		var err error
		repos, err = repo.New(repo.Dependencies{
			Conn:  conn,
			Cache: cch,
			TTL:   cachekeys.NewTTLSet(c.TTL),
		})
		if err != nil {
			return nil, fmt.Errorf("svc: build repositories: %w", err)
		}
	} else {
		if !c.IsTestEnv() {
			return nil, errors.New("svc: postgres.dsn is required outside test environments")
		}
		logx.Info("svc: no postgres dsn configured, using in-memory storage")
		repos = repo.NewMemorySet()
	}

	provider := market.NewYahooProvider(
		market.WithTimeout(time.Duration(c.Market.TimeoutSeconds) * time.Second),
	)

	st := store.New(repos.Metrics, c.Retention.KeepLast)
	reg := registry.New(repos.Symbols, provider)
	assets := asset.NewService(provider, st, reg, c.Market.Period)

	ctx := &ServiceContext{
		Config:   c,
		Repos:    repos,
		Store:    st,
		Registry: reg,
		Assets:   assets,
		Provider: provider,
	}

	if c.LLM.Value != nil {
		client, err := llm.NewClient(c.LLM.Value)
		if err != nil {
			return nil, fmt.Errorf("svc: build llm client: %w", err)
		}
		ctx.llmClient = client
		ctx.Summarizer = summary.New(client, provider, c.Market.Period)
	}
	return ctx, nil
}

// Close releases held resources. Safe to call once at shutdown.
func (s *ServiceContext) Close() error {
	if s.llmClient != nil {
		return s.llmClient.Close()
	}
	return nil
}
