package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/cmpny/customerdataservice/internal/domain"
)

// Register attaches API routes to the provided router.
func Register(r chi.Router, logger *slog.Logger, domainServices domain.Container) {
	r.Get("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"server":  "customerdataservice",
			"version": "v1",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to write ping response", "err", err)
		}
	})

	registerCustomerRoutes(r, logger, domainServices.Customers)
}
