package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"primecalc/go-server/internal/config"
	"primecalc/go-server/internal/platform/logging"
	"primecalc/go-server/internal/server"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to primed.yaml (optional)")
	host := flag.String("host", "", "Listen host override")
	port := flag.Int("port", 0, "Listen port override")
	workers := flag.Int("workers", 0, "Worker pool size override")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus listen address (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("primed version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	cfg := config.LoadFromPath(*configPath)
	if *host != "" {
		cfg.Host = *host
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	log.Printf("primed starting on %s with %d workers", cfg.Addr(), cfg.Workers)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("primed failed: %v", err)
	}
	log.Println("primed stopped")
}
