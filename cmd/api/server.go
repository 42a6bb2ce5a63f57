package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bookql/internal/book"
	"bookql/internal/config"
	"bookql/internal/graph"
	"bookql/internal/httpx"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type server struct {
	handler http.Handler
	limiter *httpx.RateLimitMiddleware
}

func newServer(cfg config.Config, log *zap.Logger, reg *prometheus.Registry, repo book.Repository, db pinger) (*server, error) {
	resolver := graph.NewResolver(book.NewService(repo), log, graph.NewOperationsCounter(reg))
	schema, err := graph.NewSchema(resolver, graph.SchemaConfig{MaxDepth: cfg.GraphQLMaxDepth, Logger: log})
	if err != nil {
		return nil, err
	}
	metrics := httpx.NewMetrics(reg)

	router := http.NewServeMux()
	router.Handle("/graphql", metrics.Instrument("/graphql", graph.NewHandler(schema, log)))
	if cfg.GraphiQLEnabled {
		router.Handle("/graphiql", metrics.Instrument("/graphiql", graph.GraphiQLHandler("/graphql")))
	}
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).TrustProxies(cfg.TrustedProxies)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(log),
		httpx.AccessLogMiddleware(log),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	return &server{handler: handler, limiter: limiter}, nil
}

func (s *server) Handler() http.Handler { return s.handler }

// Close stops the rate limiter's sweeper.
func (s *server) Close() { s.limiter.Stop() }
