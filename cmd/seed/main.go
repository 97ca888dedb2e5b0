package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmpny/customerdataservice/internal/config"
	"github.com/cmpny/customerdataservice/internal/logger"
	"github.com/cmpny/customerdataservice/internal/seed"
	"github.com/cmpny/customerdataservice/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logr := logger.New("development")
		logr.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr := logger.New(cfg.Env)

	if cfg.DataBackend == config.BackendMemory {
		logr.Error("seed command requires a persistent DATA_BACKEND (sqlite, postgres or badger)")
		os.Exit(1)
	}

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg, logr)
	if err != nil {
		logr.Error("failed to open storage", "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	res, err := seed.LoadFile(ctx, backend.Customers, cfg.SeedFile, logr)
	if err != nil {
		logr.Error("seed failed", "file", cfg.SeedFile, "err", err)
		backend.Close()
		os.Exit(1)
	}

	for _, c := range res.Saved {
		fmt.Printf("Customer: %s %s (%s) %s\n", c.FirstName, c.LastName, c.EmailAddress, c.ID)
	}

	if res.Failed > 0 {
		logr.Error("seed finished with failures", "failed", res.Failed)
		backend.Close()
		os.Exit(1)
	}
	logr.Info("seed complete", "saved", len(res.Saved), "skipped", res.Skipped)
}
