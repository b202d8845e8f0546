package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/livesession/go/internal/config"
	"github.com/mcdev12/livesession/go/internal/session"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg config.Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Language"},
	})

	registerServices(mux, services)
	setupHealthCheck(mux, services)
	setupInfo(mux, services)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	services.Session.RegisterRoutes(mux)
	services.WebSocket.RegisterRoutes(mux)
	services.I18n.RegisterRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !services.RelayConnected() {
			http.Error(w, "event relay disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

func setupInfo(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		stats := services.Connections.GetConnectionStats()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"service":     session.ServiceName,
			"rooms":       services.Store.Len(),
			"connections": stats.TotalConnections,
		}); err != nil {
			log.Error().Err(err).Msg("failed to write info response")
		}
	})
}
