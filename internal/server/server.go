package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aalfraarauscher/loan-app-admin/internal/config"
	"github.com/aalfraarauscher/loan-app-admin/internal/handlers"
	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	logger        *logger.Logger
	router        *mux.Router
	httpServer    *http.Server
	adminHandler  *handlers.AdminAPIHandler
	healthHandler *handlers.HealthHandler
}

// NewServer creates a new HTTP server
func NewServer(
	config *config.Config,
	logger *logger.Logger,
	adminHandler *handlers.AdminAPIHandler,
	healthHandler *handlers.HealthHandler,
) *Server {
	router := mux.NewRouter()

	server := &Server{
		config:        config,
		logger:        logger,
		router:        router,
		adminHandler:  adminHandler,
		healthHandler: healthHandler,
	}

	server.setupRoutes()
	server.setupHTTPServer()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoints
	s.router.HandleFunc("/health", s.healthHandler.HandleHealthCheck).Methods("GET")
	s.router.HandleFunc("/health/ready", s.healthHandler.HandleReadinessProbe).Methods("GET")
	s.router.HandleFunc("/health/live", s.healthHandler.HandleLivenessProbe).Methods("GET")

	// Metrics endpoint for monitoring systems
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Admin API routes
	s.adminHandler.RegisterRoutes(s.router)

	// Global middleware
	s.router.Use(middleware.CompressionMiddleware)
	s.router.Use(s.loggingMiddleware)
}

// setupHTTPServer configures the HTTP server
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}
}

// Start starts the HTTP server, blocking until shutdown
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.config.Server.Port).Info("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("HTTP server error")
		return err
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
