package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

type AssetHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAssetHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AssetHistoryLogic {
	return &AssetHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AssetHistory returns up to limit retained snapshots for a symbol,
// newest first.
func (l *AssetHistoryLogic) AssetHistory(req *types.HistoryRequest) (*types.HistoryResponse, error) {
	entries, err := l.svcCtx.Store.GetHistory(l.ctx, req.Symbol, req.Limit)
	if err != nil {
		l.Errorf("fetch history symbol=%s: %v", req.Symbol, err)
		return nil, errorx.Internal("%v", err)
	}
	if len(entries) == 0 {
		return nil, errorx.NotFound("No history found for symbol %s", req.Symbol)
	}

	history := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		history = append(history, types.HistoryEntry{
			Symbol:    e.Symbol,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Metadata: types.HistoryMetadata{
				LatestPrice:      e.Metrics.LatestPrice,
				ChangePercent24h: e.Metrics.ChangePercent24h,
				AveragePrice7d:   e.Metrics.AveragePrice7d,
			},
		})
	}
	return &types.HistoryResponse{History: history}, nil
}
