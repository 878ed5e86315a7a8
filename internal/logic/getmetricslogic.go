package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

type GetMetricsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetMetricsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetMetricsLogic {
	return &GetMetricsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetMetrics fetches live metrics for a symbol, persists the snapshot,
// and returns the stamped record.
func (l *GetMetricsLogic) GetMetrics(req *types.MetricsRequest) (*types.Asset, error) {
	current := l.svcCtx.Assets.FetchAndSnapshot(l.ctx, req.Symbol)
	if current == nil {
		return nil, errorx.NotFound("Symbol %s not found", req.Symbol)
	}
	resp := assetFromCurrent(*current)
	return &resp, nil
}
