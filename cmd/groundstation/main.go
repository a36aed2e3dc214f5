package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/api"
	"github.com/cansat-link/groundstation/internal/app"
	cfgpkg "github.com/cansat-link/groundstation/internal/config"
	"github.com/cansat-link/groundstation/internal/httpserver"
	"github.com/cansat-link/groundstation/internal/logging"
	"github.com/cansat-link/groundstation/internal/metrics"
	"github.com/cansat-link/groundstation/internal/telemlog"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// 1) configuration
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) logging
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) metrics
	reg := metrics.NewRegistry()
	linkMetrics := metrics.NewLinkMetrics(reg)
	var metricsHandler = metrics.Handler(reg)
	if !cfg.Metrics.Enable {
		metricsHandler = nil
	}

	// 4) telemetry capture
	tlog, err := telemlog.Open(cfg.Telemetry.File)
	if err != nil {
		log.Fatal("telemetry log open error", zap.Error(err))
	}
	defer func() { _ = tlog.Close() }()

	// 5) station: driver + ledger + salvage + state
	station := app.New(log, linkMetrics, cfg.Link, tlog)
	log.Info("station starting",
		zap.String("run_id", station.RunID()),
		zap.String("modem_addr", cfg.Link.Addr),
		zap.Uint16("team_id", cfg.Link.TeamID))

	// 6) HTTP: health, metrics, station API
	handler := api.NewHandler(station, cfg.Link.TeamID, log)
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, station.Linked, handler.Register)

	ctx, cancel := context.WithCancel(context.Background())
	go station.Run(ctx)
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()

	// signal handling, graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
