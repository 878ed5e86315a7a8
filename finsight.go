// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"finsight-api/internal/cli"
	"finsight-api/internal/config"
	"finsight-api/internal/errorx"
	"finsight-api/internal/handler"
	"finsight-api/internal/svc"
)

var configFile = flag.String("f", "etc/finsight.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(cfg)
	if err != nil {
		log.Fatalf("failed to build service context: %v", err)
	}
	defer ctx.Close()

	httpx.SetErrorHandlerCtx(errorx.Handler)
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
