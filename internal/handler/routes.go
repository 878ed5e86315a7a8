// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"finsight-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/assets",
				Handler: GetAssetsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/assets",
				Handler: AddAssetsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/assets/:symbol/history",
				Handler: AssetHistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/metrics/:symbol",
				Handler: GetMetricsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/compare",
				Handler: CompareHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/summary",
				Handler: SummaryHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/ingest",
				Handler: IngestHandler(serverCtx),
			},
		},
	)
}
