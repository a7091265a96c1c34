package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lintang-b-s/macrotracking/pkg/config"
	"github.com/lintang-b-s/macrotracking/pkg/logger"
	"github.com/lintang-b-s/macrotracking/pkg/macrotracking"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "./data/", "folder holding config.yaml")
	traces     = flag.String("traces", "", "comma separated trace names, empty runs every configured trace")
	_          = flag.Bool("map_correction", true, "correct the dead reckoning with the road map, overrides macrotracking.map_based_correction when set")
	reportFile = flag.String("report", "", "write the run reports as json to this file")
)

func main() {
	flag.Parse()
	cfg, err := config.ReadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	applyFlagOverrides(flag.CommandLine, cfg)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var names []string
	if *traces != "" {
		names = strings.Split(*traces, ",")
	}

	runner := macrotracking.NewRunner(cfg, registry, source, log)
	results := runner.RunAll(ctx, names...)

	failed := 0
	reports := make([]*macrotracking.Report, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			failed++
			log.Error("trace failed", zap.String("trace", res.Trace), zap.Error(res.Err))
			continue
		}
		reports = append(reports, res.Report)
		log.Info("trace done", zap.String("trace", res.Trace), zap.String("output", res.Report.OutputFolder),
			zap.Float64("totalDistance", res.Report.TotalDistance), zap.Float64("endDistance", res.Report.EndDistance))
	}

	if *reportFile != "" {
		js, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			log.Fatal("encode reports", zap.Error(err))
		}
		if err := os.WriteFile(*reportFile, js, 0o644); err != nil {
			log.Fatal("write reports", zap.Error(err))
		}
	}

	log.Info("Macrotracking finished", zap.Int("traces", len(results)), zap.Int("failed", failed))
	if failed > 0 {
		log.Sync()
		os.Exit(1)
	}
}

// applyFlagOverrides copies the flags given on the command line into cfg. flags left at their
// default keep the configured value.
func applyFlagOverrides(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "map_correction":
			if getter, ok := f.Value.(flag.Getter); ok {
				if v, ok := getter.Get().(bool); ok {
					cfg.Macrotracking.MapBasedCorrection = v
				}
			}
		}
	})
}
