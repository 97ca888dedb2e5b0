package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cmpny/customerdataservice/internal/config"
	"github.com/cmpny/customerdataservice/internal/domain"
	"github.com/cmpny/customerdataservice/internal/httpapi"
	"github.com/cmpny/customerdataservice/internal/logger"
	"github.com/cmpny/customerdataservice/internal/seed"
	"github.com/cmpny/customerdataservice/internal/server"
	"github.com/cmpny/customerdataservice/internal/storage"
	"github.com/cmpny/customerdataservice/internal/telemetry"
)

var version = "0.0.1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env)

	if err := run(cfg, logr); err != nil {
		logr.Error("customer data service exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logr *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    "customerdataservice",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   cfg.TraceSampleRate,
	})
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logr.Error("error closing storage", "err", cerr)
		}
	}()

	if cfg.SeedOnStart {
		if _, err := seed.LoadFile(ctx, backend.Customers, cfg.SeedFile, logr); err != nil {
			logr.Error("unable to persist customers", "err", err)
		}
	}

	domainContainer := domain.New(domain.Options{
		CustomerRepo: backend.Customers,
		Logger:       logr,
	})

	srv := server.New(cfg, logr, backend)
	httpapi.Register(srv.Router(), logr, domainContainer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Error("server shutdown failed", "err", err)
			return err
		}
		return tracing.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
