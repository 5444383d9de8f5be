// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahfuzsust/AnalyticsSDK/internal/health"
)

// OpsHandler serves the agent's operational endpoints:
//
//	GET /metrics  Prometheus exposition
//	GET /healthz  liveness, ?verbose=true runs the checks
//	GET /readyz   readiness
func OpsHandler(hm *health.Manager) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", hm.ServeHealth)
	r.Get("/readyz", hm.ServeReady)
	return r
}
