package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/handlers"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	config            *config.Config
	logger            *logger.Logger
	router            *mux.Router
	httpServer        *http.Server
	authHandler       *handlers.AuthHandler
	documentHandler   *handlers.DocumentHandler
	policyHandler     *handlers.PolicyHandler
	syncHandler       *handlers.SyncHandler
	validationHandler *handlers.ValidationHandler
	aliasHandler      *handlers.AliasHandler
	settingsHandler   *handlers.SettingsHandler
	healthHandler     *handlers.HealthHandler
}

// NewServer creates a new HTTP server
func NewServer(
	config *config.Config,
	logger *logger.Logger,
	authHandler *handlers.AuthHandler,
	documentHandler *handlers.DocumentHandler,
	policyHandler *handlers.PolicyHandler,
	syncHandler *handlers.SyncHandler,
	validationHandler *handlers.ValidationHandler,
	aliasHandler *handlers.AliasHandler,
	settingsHandler *handlers.SettingsHandler,
	healthHandler *handlers.HealthHandler,
) *Server {
	router := mux.NewRouter()

	server := &Server{
		config:            config,
		logger:            logger,
		router:            router,
		authHandler:       authHandler,
		documentHandler:   documentHandler,
		policyHandler:     policyHandler,
		syncHandler:       syncHandler,
		validationHandler: validationHandler,
		aliasHandler:      aliasHandler,
		settingsHandler:   settingsHandler,
		healthHandler:     healthHandler,
	}

	server.setupRoutes()
	server.setupHTTPServer()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.HandleFunc("/health", s.healthHandler.HandleHealthCheck).Methods("GET")
	s.router.HandleFunc("/health/ready", s.healthHandler.HandleReadinessProbe).Methods("GET")
	s.router.HandleFunc("/health/live", s.healthHandler.HandleLivenessProbe).Methods("GET")
	s.router.HandleFunc("/health/component", s.healthHandler.HandleComponentHealth).Methods("GET")

	// Metrics endpoint (no auth required for monitoring systems)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Management API routes
	s.authHandler.RegisterRoutes(s.router)
	s.documentHandler.RegisterRoutes(s.router)
	s.policyHandler.RegisterRoutes(s.router)
	s.syncHandler.RegisterRoutes(s.router)
	s.validationHandler.RegisterRoutes(s.router)
	s.aliasHandler.RegisterRoutes(s.router)
	s.settingsHandler.RegisterRoutes(s.router)

	// Add compression middleware
	s.router.Use(middleware.CompressionMiddleware)

	// Add other global middleware
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

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.config.Server.Port).Info("Starting HTTP server")

	// Start server - this will block until the server is shut down
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.WithError(err).Error("HTTP server error")
		return err
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	timeout := time.Duration(s.config.Server.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Middleware

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
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
