package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/propshare/exchange/internal/app/engine"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/httplib/healthcheck"
	"github.com/propshare/exchange/pkg/logger"
)

// Server exposes the engine's command surface over HTTP.
type Server struct {
	engine *engine.Engine
	router *mux.Router
	logger logger.Interface
	http   *http.Server
}

// NewServer creates an API server over the given engine.
func NewServer(eng *engine.Engine, health *healthcheck.HealthCheck, log logger.Interface, cfg *config.AppConfig) *Server {
	s := &Server{
		engine: eng,
		router: mux.NewRouter(),
		logger: log,
	}

	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      health.Handler(s.identityMiddleware(s.router)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", s.handleCancelOrder).Methods("DELETE")
	api.HandleFunc("/orders/{id}/fills", s.handleGetOrderFills).Methods("GET")

	api.HandleFunc("/instruments/{id}/book", s.handleGetOrderBook).Methods("GET")
	api.HandleFunc("/instruments/{id}/market-data", s.handleGetMarketData).Methods("GET")
	api.HandleFunc("/instruments/{id}/trades", s.handleGetRecentTrades).Methods("GET")
	api.HandleFunc("/instruments/{id}/lots", s.handleGetUserTokenLots).Methods("GET")
}

// Start begins serving. Blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("API server listening", logger.Field{
		Key:   "addr",
		Value: s.http.Addr,
	})

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
