package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"caissa/internal/config"
	"caissa/internal/db"
	"caissa/internal/llm"
	"caissa/internal/manifold"
	"caissa/internal/monitor"
	"caissa/internal/performance"
	"caissa/internal/strategy"
)

func main() {
	simulate := flag.Bool("simulate", false, "Run the full decision pipeline without submitting bets")
	cycles := flag.Int("cycles", 0, "Stop after this many polling cycles (0 = run indefinitely)")
	configPath := flag.String("config", "config.toml", "Path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.General)
	slog.Info("caissa starting", "creator", cfg.Monitor.Creator, "simulate", *simulate)

	store, err := db.Open(cfg.General.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database initialized", "path", cfg.General.DBPath)

	strategies := buildStrategies(cfg)
	if len(strategies) == 0 {
		// Degraded but valid: the bot polls and logs, it just never sees
		// an actionable signal.
		slog.Warn("no forecast back-ends available; bot will not place bets")
	}

	client := manifold.NewClient(cfg.Secrets.ManifoldAPIKey)

	mon := monitor.New(
		client,
		strategies,
		store,
		performance.NewTracker(store.DB()),
		monitor.Config{
			Creator:        cfg.Monitor.Creator,
			PollInterval:   cfg.Monitor.PollInterval.Duration,
			Cooldown:       cfg.Monitor.Cooldown.Duration,
			MarketLimit:    cfg.Monitor.MarketLimit,
			ReportInterval: cfg.Monitor.ReportInterval.Duration,
			Bankroll:       cfg.Risk.Bankroll,
			MaxBet:         cfg.Risk.MaxBet,
			KellyFraction:  cfg.Risk.KellyFraction,
			MinConfidence:  cfg.Risk.MinConfidence,
			MinStake:       cfg.Risk.MinStake,
			Simulate:       *simulate,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if err := mon.Run(ctx, *cycles); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("monitor error", "error", err)
		os.Exit(1)
	}

	slog.Info("caissa stopped")
}

func setupLogging(cfg config.GeneralConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

// buildStrategies instantiates one forecast strategy per configured
// back-end, skipping those whose API key is absent.
func buildStrategies(cfg *config.Config) []strategy.Strategy {
	var strategies []strategy.Strategy
	for _, fc := range cfg.Forecasters {
		key := cfg.BackendKey(fc.Backend)
		if key == "" {
			slog.Warn("skipping forecaster: missing API key",
				"forecaster", fc.Name,
				"backend", fc.Backend,
			)
			continue
		}

		var completer llm.Completer
		switch fc.Backend {
		case "openai":
			completer = llm.NewOpenAI(key, fc.Model)
		case "anthropic":
			completer = llm.NewAnthropic(key, fc.Model)
		default:
			slog.Warn("skipping forecaster: unknown backend",
				"forecaster", fc.Name,
				"backend", fc.Backend,
			)
			continue
		}

		strategies = append(strategies, strategy.NewForecast(fc.Name, completer))
		slog.Info("forecaster registered", "forecaster", fc.Name, "backend", fc.Backend, "model", fc.Model)
	}
	return strategies
}
