package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the agent's HTTP surface: the five turn endpoints,
// health probes and Prometheus metrics.
func NewRouter(agent TurnHandler, logger zerolog.Logger, cfg RouterConfig) http.Handler {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	handler := NewAgentHandler(agent, metrics)

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}

	r := chi.NewRouter()

	r.Use(loggerMiddleware(logger))
	r.Use(RequestID)
	r.Use(RequestLogging)
	r.Use(Recovery)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/agent", func(r chi.Router) {
		r.Use(NewRateLimit(rps, burst).Middleware)

		r.Post("/query", handler.Query)
		r.Post("/buyer-info", handler.BuyerInfo)
		r.Post("/shipping-address", handler.ShippingAddress)
		r.Post("/shipping-option", handler.ShippingOption)
		r.Post("/payment", handler.Payment)
	})

	return r
}
