package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"carrera/internal/config"
	"carrera/internal/handlers"
	"carrera/internal/logging"
	"carrera/internal/middleware"
	"carrera/internal/publish"
	"carrera/internal/race"
	"carrera/internal/tracing"
	"carrera/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const serviceName = "carrera-server"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic("config: " + err.Error())
	}
	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.RequireServer(); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	// Initialize OpenTelemetry tracing
	shutdownTracing, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.AppEnv,
		TracesExport: cfg.TracesExport,
		Sampler:      cfg.TraceSampler,
		SamplerArg:   cfg.TraceArg,
	})
	if err != nil {
		log.Fatal("tracing init", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown error", zap.Error(err))
		}
	}()

	game, err := race.NewGame(cfg)
	if err != nil {
		log.Fatal("race setup", zap.Error(err))
	}
	log.Info("race configured", zap.String("race_id", game.ID.String()), zap.Uint64("seed", game.Seed))

	hubRef := websocket.NewHubRef(websocket.NewHub(log))
	go func() {
		for {
			panicked := false
			currentHub, ok := hubRef.Get()
			if !ok || currentHub == nil {
				// Should never happen (we always Store a *Hub), but avoid nil deref.
				time.Sleep(1 * time.Second)
				hubRef.Set(websocket.NewHub(log))
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						panicked = true
						log.Error("hub.Run panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
					}
				}()
				currentHub.Run()
			}()

			// If hub.Run returned normally (Stop() called), exit.
			// Only restart on panic.
			if !panicked {
				return
			}
			// Clients of the dead hub stop enqueueing work instead of blocking forever.
			currentHub.Stop()
			hubRef.Set(websocket.NewHub(log))
			time.Sleep(1 * time.Second)
		}
	}()

	handlers.SetWebSocketOriginPolicy(cfg.IsDev(), cfg.DevWebSocketsAllowAll, cfg.WSAllowedOrigins)

	manager := race.NewManager()
	sinks := []race.Sink{manager, handlers.SpectatorSink{Hubs: hubRef}}
	if cfg.RedisAddr != "" {
		pub, err := publish.NewRedisPublisher(context.Background(), publish.RedisOptions{
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

	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.DevCORS(cfg))
	handlers.RegisterRaceRoutes(r, manager, hubRef, game.ID.String())

	// cfg.Addr is fully resolved by config.LoadFromEnv() (BACKEND_ADDR or PORT).
	addr := cfg.Addr

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	raceCtx, cancelRace := context.WithCancel(context.Background())
	raceDone := make(chan struct{})
	go func() {
		defer close(raceDone)
		runner := &race.Runner{Game: game, Sinks: sinks, TurnDelay: cfg.TurnDelay, Logger: log}
		// The runner logs and publishes the outcome; the server keeps serving
		// the final snapshot until it is stopped.
		_, _ = runner.Run(raceCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	cancelRace()
	<-raceDone

	if h, ok := hubRef.Get(); ok && h != nil {
		h.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
