package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

type IngestLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewIngestLogic(ctx context.Context, svcCtx *svc.ServiceContext) *IngestLogic {
	return &IngestLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Ingest runs a manual ingestion pass. Without an explicit asset list
// every tracked symbol is refreshed; new symbols with fetchable data are
// registered along the way.
func (l *IngestLogic) Ingest(req *types.IngestRequest) (*types.IngestResponse, error) {
	symbols := req.Assets
	if len(symbols) == 0 {
		tracked, err := l.svcCtx.Registry.ListSymbols(l.ctx)
		if err != nil {
			l.Errorf("list tracked symbols: %v", err)
			return nil, errorx.Internal("%v", err)
		}
		symbols = tracked
	}

	result := l.svcCtx.Assets.Ingest(l.ctx, symbols)
	if len(result.UpdatedAssets) == 0 {
		return nil, errorx.BadRequest("No valid data could be fetched for any symbol")
	}

	return &types.IngestResponse{
		Message:         result.Message,
		UpdatedCount:    result.UpdatedCount,
		SuccessMessages: result.SuccessMessages,
		ErrorMessages:   result.ErrorMessages,
		UpdatedAssets:   result.UpdatedAssets,
	}, nil
}
