package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/macrotracking/pkg/config"
	"github.com/lintang-b-s/macrotracking/pkg/http"
	"github.com/lintang-b-s/macrotracking/pkg/http/usecases"
	"github.com/lintang-b-s/macrotracking/pkg/logger"
	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "./data/", "folder holding config.yaml")
)

func main() {
	flag.Parse()
	cfg, err := config.ReadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	registry, err := cfg.Registry()
	if err != nil {
		log.Fatal("invalid trace registry", zap.Error(err))
	}
	source, err := macrotracking.NewRoadGraphSource(cfg.Map, log)
	if err != nil {
		log.Fatal("invalid road data source", zap.Error(err))
	}

	runner := macrotracking.NewRunner(cfg, registry, source, log)
	traceService := usecases.NewTraceService(runner, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(log)
	if err := api.Use(ctx, cfg.Server, traceService); err != nil {
		log.Error("report server failed", zap.Error(err))
	}

	log.Info("Macrotracking report server stopped")
}
