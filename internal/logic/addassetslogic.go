package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

type AddAssetsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAddAssetsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AddAssetsLogic {
	return &AddAssetsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AddAssets registers the valid subset of the requested symbols and
// fetches fresh metrics for every requested symbol. The response keeps
// the request order; symbols without data come back bare.
func (l *AddAssetsLogic) AddAssets(req *types.AddAssetsRequest) (*types.AssetsResponse, error) {
	if len(req.Symbols) == 0 {
		return nil, errorx.BadRequest("No symbols provided. Please provide at least one symbol.")
	}

	updated, err := l.svcCtx.Registry.Register(l.ctx, req.Symbols)
	if err != nil {
		l.Errorf("register symbols: %v", err)
		return nil, errorx.Internal("%v", err)
	}
	if len(updated) == 0 {
		return nil, errorx.BadRequest("No valid symbols provided. Symbols should be in format 'BTC-USD' for crypto or 'TSLA' for stocks.")
	}

	results := l.svcCtx.Assets.AddAssets(l.ctx, req.Symbols)
	assets := make([]types.Asset, 0, len(results))
	for _, r := range results {
		if r.Metrics != nil {
			assets = append(assets, assetFromCurrent(*r.Metrics))
		} else {
			assets = append(assets, types.Asset{Symbol: r.Symbol})
		}
	}

	l.Infof("added assets requested=%v tracked=%d", req.Symbols, len(updated))
	return &types.AssetsResponse{Assets: assets}, nil
}
