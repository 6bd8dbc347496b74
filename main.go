// NetGuard-AI backend: streams simulated or replayed network traffic
// through a feature/prediction pipeline and serves the resulting event
// log to the dashboard over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arjitrawat15/NetGuard-AI/internal/analyzer"
	"github.com/arjitrawat15/NetGuard-AI/internal/api"
	"github.com/arjitrawat15/NetGuard-AI/internal/config"
	"github.com/arjitrawat15/NetGuard-AI/internal/events"
	"github.com/arjitrawat15/NetGuard-AI/internal/generator"
	"github.com/arjitrawat15/NetGuard-AI/internal/logging"
	"github.com/arjitrawat15/NetGuard-AI/internal/metrics"
	"github.com/arjitrawat15/NetGuard-AI/internal/ml"
	"github.com/arjitrawat15/NetGuard-AI/internal/store"
	"github.com/arjitrawat15/NetGuard-AI/internal/threat"
)

func main() {
	var (
		logLevel  = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFormat = flag.String("log-format", "text", "log format (text, json)")
		showEnv   = flag.Bool("env-help", false, "print configuration environment variables and exit")
	)
	flag.Parse()

	if *showEnv {
		fmt.Print(config.EnvVarsDoc)
		return
	}

	logging.Init(&logging.Config{
		Level:  parseLevel(*logLevel),
		Output: os.Stderr,
		Format: *logFormat,
	})

	cfg := config.Default()
	cfg.Validate()
	if err := cfg.EnsureDirectories(); err != nil {
		logging.Error("failed to create data directory", "dir", cfg.DataDir, logging.Err(err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logging.Error("fatal", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	classifier := ml.NewClassifier(&ml.ClassifierConfig{ModelPath: cfg.ModelPath})
	annotator := threat.NewAnnotator(&threat.AnnotatorConfig{
		Threshold:             cfg.ThreatThreshold,
		HighSeverityThreshold: cfg.HighSeverityThreshold,
	})
	eventLog := store.NewEventLog(cfg.LogCapacity)
	bus := events.NewBus()
	m := metrics.NewDefault()

	persister := store.NewPersister(cfg.DataDir)
	persister.Attach(bus)
	defer persister.Close()

	a := analyzer.New(&analyzer.Config{TickInterval: cfg.TickInterval},
		source, classifier, annotator, eventLog, bus, m)
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	go statsLoop(ctx, a, eventLog)

	server := api.NewServer(ctx, a, eventLog)
	return server.Run(ctx, cfg.ListenAddr)
}

func buildSource(cfg *config.Config) (generator.Source, error) {
	if cfg.PcapFile != "" {
		return generator.NewPCAPReplay(&generator.PCAPReplayConfig{
			File:     cfg.PcapFile,
			MaxBatch: cfg.MaxBatch,
		})
	}
	return generator.NewSimulator(&generator.SimulatorConfig{
		MinBatch:   cfg.MinBatch,
		MaxBatch:   cfg.MaxBatch,
		ThreatRate: cfg.ThreatRate,
	}), nil
}

// statsLoop logs a pipeline summary every minute while running.
func statsLoop(ctx context.Context, a *analyzer.Analyzer, log *store.EventLog) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := a.Stats()
			logging.AnalyzerLogger().Info("pipeline summary",
				"running", stats.Running,
				"packets", stats.TotalPackets,
				"threats", stats.ThreatsDetected,
				"dropped", stats.RecordsDropped,
				"log_size", log.Size(),
				"overruns", stats.TickOverruns)
		}
	}
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
