package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/pandodao/lock-wallet/handler/api"
	"github.com/pandodao/lock-wallet/handler/hc"
	"github.com/pandodao/lock-wallet/handler/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"github.com/spf13/viper"
	"github.com/tsenart/nap"
)

var serverSet = wire.NewSet(
	provideApiConfig,
	api.New,
	provideMetrics,
	provideServer,
)

func provideApiConfig(v *viper.Viper) api.Config {
	v.SetDefault("api.account_header", "X-Account-Id")

	return api.Config{
		AccountHeader: v.GetString("api.account_header"),
	}
}

func provideMetrics() *metrics.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return metrics.New(reg)
}

func provideServer(apiHandler *api.Server, metricsHandler *metrics.Metrics, db *nap.DB) *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.With(metricsHandler.Middleware).Mount("/api", apiHandler.Handler())
	m.Mount("/hc", hc.Handler(version, db.Master()))
	m.Mount("/metrics", metricsHandler.Handler())

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}
