// Package seed populates a customer repository from a JSON document.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
	"github.com/cmpny/customerdataservice/internal/metrics"
)

//go:embed data.json
var defaultData []byte

// Result summarizes a load.
type Result struct {
	Saved   []customers.Customer
	Skipped int
	Failed  int
}

// Load decodes a JSON array of customers from r and saves each one. Records
// whose email is already stored are skipped, so reloading into a persistent
// backend is harmless. Other save failures are logged and counted; decoding
// errors abort the load.
func Load(ctx context.Context, repo customers.Repository, r io.Reader, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var records []customers.Customer
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return Result{}, fmt.Errorf("decode seed data: %w", err)
	}

	var res Result
	for _, rec := range records {
		rec.ID = ""
		saved, err := repo.Save(ctx, rec)
		if errors.Is(err, customers.ErrEmailExists) {
			logger.Debug("seed customer already present", "email", rec.EmailAddress)
			res.Skipped++
			continue
		}
		if err != nil {
			logger.Error("failed to seed customer", "email", rec.EmailAddress, "err", err)
			metrics.ObserveSeed(false)
			res.Failed++
			continue
		}
		metrics.ObserveSeed(true)
		res.Saved = append(res.Saved, saved)
	}

	logger.Info("customer data initialized", "saved", len(res.Saved), "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// LoadDefault loads the built-in dataset.
func LoadDefault(ctx context.Context, repo customers.Repository, logger *slog.Logger) (Result, error) {
	return Load(ctx, repo, bytes.NewReader(defaultData), logger)
}

// LoadFile loads path, or the built-in dataset when path is empty.
func LoadFile(ctx context.Context, repo customers.Repository, path string, logger *slog.Logger) (Result, error) {
	if path == "" {
		return LoadDefault(ctx, repo, logger)
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(ctx, repo, f, logger)
}
