// Command carrera runs one horse race on the console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"carrera/internal/config"
	"carrera/internal/logging"
	"carrera/internal/models"
	"carrera/internal/publish"
	"carrera/internal/race"
	"carrera/internal/report"
	"carrera/internal/tracing"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := cfg.TracesExport
	if exporter == "" {
		exporter = "none"
	}
	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "carrera",
		Environment:  cfg.AppEnv,
		TracesExport: exporter,
		Sampler:      cfg.TraceSampler,
		SamplerArg:   cfg.TraceArg,
	})
	if err != nil {
		log.Error("tracing init failed", zap.Error(err))
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("tracing shutdown error", zap.Error(err))
		}
	}()

	g, err := race.NewGame(cfg)
	if err != nil {
		log.Error("race setup failed", zap.Error(err))
		return 1
	}
	log.Info("race configured",
		zap.String("race_id", g.ID.String()),
		zap.Uint64("seed", g.Seed),
		zap.Bool("stacked", cfg.StackedDeck != ""),
	)

	sinks := []race.Sink{report.NewText(os.Stdout)}
	if cfg.RedisAddr != "" {
		pub, err := publish.NewRedisPublisher(ctx, publish.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis publisher disabled", zap.Error(err))
		} else {
			defer func() { _ = pub.Close() }()
			sinks = append(sinks, pub)
		}
	}

	runner := &race.Runner{Game: g, Sinks: sinks, Logger: log}
	if _, err := runner.Run(ctx); err != nil {
		what := "interrupted"
		if models.IsFatal(err) {
			what = "aborted"
		}
		fmt.Fprintf(os.Stderr, "carrera: race %s (seed %d) %s: %v\n", g.ID, g.Seed, what, err)
		return 1
	}
	return 0
}
