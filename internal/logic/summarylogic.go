package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"finsight-api/internal/errorx"
	"finsight-api/internal/svc"
	"finsight-api/internal/types"
)

// summaryMaxSymbols caps how many tracked assets feed one summary when
// no symbol filter is given.
const summaryMaxSymbols = 10

type SummaryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSummaryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SummaryLogic {
	return &SummaryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Summary refreshes the selected symbols and returns a model-generated
// overview of their current trends.
func (l *SummaryLogic) Summary(req *types.SummaryRequest) (*types.SummaryResponse, error) {
	if l.svcCtx.Summarizer == nil {
		return nil, errorx.Internal("summarizer is not configured")
	}

	var symbols []string
	if req.Symbol != "" {
		symbols = []string{req.Symbol}
	} else {
		tracked, err := l.svcCtx.Registry.ListSymbols(l.ctx)
		if err != nil {
			l.Errorf("list tracked symbols: %v", err)
			return nil, errorx.Internal("%v", err)
		}
		if len(tracked) > summaryMaxSymbols {
			tracked = tracked[:summaryMaxSymbols]
		}
		symbols = tracked
	}

	l.svcCtx.Assets.Refresh(l.ctx, symbols)

	summary := l.svcCtx.Summarizer.Run(l.ctx, symbols)
	if summary == "" {
		summary = "Unable to generate summary at this time."
	}
	return &types.SummaryResponse{Summary: summary}, nil
}
