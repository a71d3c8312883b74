package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/sourcing-engine/api/middleware"
	"github.com/angelmondragon/sourcing-engine/pkg/config"
	"github.com/angelmondragon/sourcing-engine/pkg/db"
	"github.com/angelmondragon/sourcing-engine/pkg/logger"
	"github.com/angelmondragon/sourcing-engine/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

// RouterParams carries the ops surface dependencies. DB and Redis are
// optional; a nil dependency is reported as "skipped" by readiness.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Gatherer prometheus.Gatherer
}

// NewRouter builds the operational HTTP surface for a batch run:
// liveness, readiness, and Prometheus metrics.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthLive(params.Config))
		r.Get("/ready", healthReady(params))
	})

	if params.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func healthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if cfg != nil {
			w.Header().Set("X-Sourcing-Env", cfg.App.Env)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "live"})
	}
}

func healthReady(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		if params.DB != nil {
			checks["db"] = "ok"
			if err := params.DB.Ping(ctx); err != nil {
				checks["db"] = err.Error()
				ready = false
			}
		} else {
			checks["db"] = "skipped"
		}

		if params.Redis != nil {
			checks["redis"] = "ok"
			if err := params.Redis.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			}
		} else {
			checks["redis"] = "skipped"
		}

		if params.Config != nil {
			w.Header().Set("X-Sourcing-Env", params.Config.App.Env)
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "degraded"
			if params.Logger != nil {
				params.Logger.Warn(params.Logger.WithFields(r.Context(), map[string]any{"checks": checks}), "readiness check failed")
			}
		}
		writeJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
