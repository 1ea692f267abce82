package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heartmarshall/wordstream-bot/internal/transport/middleware"
)

// NewRouter mounts the ops endpoints. Recovery sits innermost so the
// request log records the 500 it writes.
func NewRouter(logger *slog.Logger, health *HealthHandler, stats *StatsHandler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/stats", stats.Stats).Methods(http.MethodGet)

	chain := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger, "/live", "/ready"),
		middleware.Recovery(logger),
	)
	return chain(r)
}
