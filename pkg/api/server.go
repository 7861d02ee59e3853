// Package api is the sdbuf REST API.
//
// It encodes JSON to sdbuf buffers, decodes buffers back to JSON and keeps
// encoded records in a storage.Archive. All routes live under /api/v1 and
// are guarded by the X-API-Key header when a key is configured. Prometheus
// metrics are served unauthenticated on /metrics and the API document on
// /swagger/swagger.json.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/storage"
)

const (
	shutdownTimeout       = 5 * time.Second
	metricsUpdateInterval = 30 * time.Second
)

// NewRouter builds the HTTP handler for s. metricsHandler is mounted on
// /metrics when non-nil.
func NewRouter(s *Server, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	if s.config.RequestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", handleSwagger)

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))
		}

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Codec
		r.Post("/encode", m.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))
		r.Post("/decode", m.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))

		// Archive
		r.Post("/records", m.InstrumentHandler("POST", "/api/v1/records", s.handleCreateRecord))
		r.Get("/records", m.InstrumentHandler("GET", "/api/v1/records", s.handleListRecords))
		r.Get("/records/{id}", m.InstrumentHandler("GET", "/api/v1/records/{id}", s.handleGetRecord))
		r.Put("/records/{id}", m.InstrumentHandler("PUT", "/api/v1/records/{id}", s.handleUpdateRecord))
		r.Delete("/records/{id}", m.InstrumentHandler("DELETE", "/api/v1/records/{id}", s.handleDeleteRecord))
	})

	return r
}

// StartServer serves the API on config.Bind:config.Port until ctx is
// cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, archive storage.Archive, c *codec.Codec, config ServerConfig) error {
	metrics := NewMetrics(prometheus.DefaultRegisterer)
	server := NewServer(archive, c, config, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	SwaggerInfo.Host = addr
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, promhttp.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go server.startMetricsUpdater(ctx, metricsUpdateInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting sdbuf REST API server on %s", addr)
		log.Printf("Metrics available at: http://%s/metrics", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Printf("Shutting down sdbuf REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
