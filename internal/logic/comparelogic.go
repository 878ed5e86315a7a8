package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
	"finsight-api/pkg/market"
)

type CompareLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCompareLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CompareLogic {
	return &CompareLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Compare fetches live metrics for two symbols in parallel and reports
// their price and 24h performance differences.
func (l *CompareLogic) Compare(req *types.CompareRequest) (*types.CompareResponse, error) {
	if req.Asset1 == "" || req.Asset2 == "" {
		return nil, errorx.BadRequest("Both asset1 and asset2 are required")
	}
	l.Infof("comparing assets asset1=%s asset2=%s", req.Asset1, req.Asset2)

	period := l.svcCtx.Config.Market.Period
	pair := [2]*market.Metrics{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		m, err := l.svcCtx.Provider.Fetch(l.ctx, req.Asset2, period)
		if err != nil {
			l.Errorf("fetch symbol=%s: %v", req.Asset2, err)
			return
		}
		pair[1] = m
	}()
	m, err := l.svcCtx.Provider.Fetch(l.ctx, req.Asset1, period)
	if err != nil {
		l.Errorf("fetch symbol=%s: %v", req.Asset1, err)
	} else {
		pair[0] = m
	}
	<-done

	if pair[0] == nil {
		return nil, errorx.NotFound("Asset %s not found", req.Asset1)
	}
	if pair[1] == nil {
		return nil, errorx.NotFound("Asset %s not found", req.Asset2)
	}

	a1 := metricsFromFetch(pair[0])
	a2 := metricsFromFetch(pair[1])
	return &types.CompareResponse{
		Asset1:                   a1,
		Asset2:                   a2,
		PriceDifference:          a1.LatestPrice - a2.LatestPrice,
		PerformanceDifference24h: a1.ChangePercent24h - a2.ChangePercent24h,
	}, nil
}

func metricsFromFetch(m *market.Metrics) types.AssetMetrics {
	return types.AssetMetrics{
		Symbol:           m.Symbol,
		LatestPrice:      m.LatestPrice,
		ChangePercent24h: m.ChangePercent24h,
		AveragePrice7d:   m.AveragePrice7d,
	}
}
