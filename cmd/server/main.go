package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina/cmd/server/middlewares"
	"lumina/internal/config"
	"lumina/internal/logger"
	"lumina/internal/storage"

	"github.com/grafana/pyroscope-go"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 25 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	if cfg.PyroscopeServerAddress != "" {
		profiler, err := startProfiler(cfg.PyroscopeServerAddress, logg)
		if err != nil {
			logg.Warn("pyroscope disabled", "error", err)
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	backend, err := storage.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error("storage init", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}

	svc := newServices(ctx, cfg, logg, backend, middlewares.NewRegistry())
	logg.Info("starting Lumina", "port", cfg.AppPort, "notes", len(svc.notes.List()))

	// Setup router and start server
	app := setupRouter(cfg, svc)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// dictation sockets are hijacked and do not end with the server
		svc.dictationRuns.StopAll()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return svc.shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}

func startProfiler(addr string, logg *slog.Logger) (*pyroscope.Profiler, error) {
	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "lumina.server",
		ServerAddress:   addr,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}
	logg.Info("pyroscope profiling enabled", "server", addr)
	return p, nil
}
