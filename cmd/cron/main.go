package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"finsight-api/internal/cli"
	"finsight-api/internal/config"
	"finsight-api/internal/svc"
)

const (
	refreshTimeout  = 2 * time.Minute  // Upper bound for one refresh pass
	shutdownTimeout = 10 * time.Second // Grace period for shutdown
)

var (
	configFile = flag.String("f", "etc/finsight.yaml", "the config file")
	runOnStart = flag.Bool("run-on-start", false, "run one refresh pass immediately")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting refresh daemon...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}

	log.Printf("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}
	log.Printf("  - Refresh schedule: %s", cfg.Cron.Spec)

	svcCtx, err := svc.NewServiceContext(cfg)
	if err != nil {
		log.Fatalf("[main] Failed to build service context: %v", err)
	}
	defer svcCtx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Cron.Spec, func() { refreshAll(ctx, svcCtx) }); err != nil {
		log.Fatalf("[main] Failed to register refresh task: %v", err)
	}

	if *runOnStart {
		refreshAll(ctx, svcCtx)
	}

	c.Start()
	log.Println("[main] Refresh daemon started. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	// Stop accepting new runs and wait for in-flight jobs.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
		log.Println("[main] All tasks stopped cleanly")
	case <-time.After(shutdownTimeout):
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}
}

// refreshAll fetches fresh metrics for every tracked symbol and runs the
// retention pass behind each write.
func refreshAll(ctx context.Context, svcCtx *svc.ServiceContext) {
	runCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	symbols, err := svcCtx.Registry.ListSymbols(runCtx)
	if err != nil {
		log.Printf("[ERROR] list tracked symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		log.Println("[INFO] no tracked symbols, skipping refresh")
		return
	}

	start := time.Now()
	svcCtx.Assets.Refresh(runCtx, symbols)
	log.Printf("[INFO] refreshed %d symbols in %s", len(symbols), time.Since(start).Round(time.Millisecond))
}
