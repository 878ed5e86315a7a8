package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

type GetAssetsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetAssetsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetAssetsLogic {
	return &GetAssetsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetAssets lists every asset that has stored metrics. When no metrics
// exist yet, the tracked symbols are returned bare.
func (l *GetAssetsLogic) GetAssets() (*types.AssetsResponse, error) {
	current, err := l.svcCtx.Store.ListCurrent(l.ctx)
	if err != nil {
		l.Errorf("list current metrics: %v", err)
		return nil, errorx.Internal("%v", err)
	}

	assets := make([]types.Asset, 0, len(current))
	for _, m := range current {
		assets = append(assets, assetFromCurrent(m))
	}

	if len(assets) == 0 {
		symbols, err := l.svcCtx.Registry.ListSymbols(l.ctx)
		if err != nil {
			l.Errorf("list tracked symbols: %v", err)
			return nil, errorx.Internal("%v", err)
		}
		for _, s := range symbols {
			assets = append(assets, types.Asset{Symbol: s})
		}
	}

	l.Infof("retrieved assets count=%d", len(assets))
	return &types.AssetsResponse{Assets: assets}, nil
}
