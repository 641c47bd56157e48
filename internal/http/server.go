// Package http provides the API server: routing, middleware assembly, and
// lifecycle management.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	apikeyHTTP "github.com/allisson/tokenvault/internal/apikey/http"
	apikeyUseCase "github.com/allisson/tokenvault/internal/apikey/usecase"
	auditHTTP "github.com/allisson/tokenvault/internal/audit/http"
	complianceHTTP "github.com/allisson/tokenvault/internal/compliance/http"
	"github.com/allisson/tokenvault/internal/metrics"
	securityHTTP "github.com/allisson/tokenvault/internal/security/http"
	tokenizationHTTP "github.com/allisson/tokenvault/internal/tokenization/http"
	vaultHTTP "github.com/allisson/tokenvault/internal/vault/http"
)

// RouterConfig carries everything the server needs to assemble its routes.
type RouterConfig struct {
	Logger *slog.Logger

	APIKeyUseCase apikeyUseCase.APIKeyUseCase

	VaultHandler        *vaultHTTP.VaultHandler
	TokenizationHandler *tokenizationHTTP.TokenizationHandler
	AuditLogHandler     *auditHTTP.AuditLogHandler
	AlertHandler        *securityHTTP.AlertHandler
	ReportHandler       *complianceHTTP.ReportHandler
	APIKeyHandler       *apikeyHTTP.APIKeyHandler

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string

	MetricsProvider  *metrics.Provider
	MetricsNamespace string

	GinMode string
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server with all routes and middleware assembled.
func NewServer(host string, port int, cfg RouterConfig) *Server {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(cfg.Logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.Logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler)

	registerRoutes(router, cfg)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// registerRoutes wires the authenticated API surface.
func registerRoutes(router *gin.Engine, cfg RouterConfig) {
	v1 := router.Group("/v1")
	v1.Use(apikeyHTTP.AuthenticationMiddleware(cfg.APIKeyUseCase, cfg.Logger))

	if cfg.RateLimitEnabled {
		v1.Use(apikeyHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, cfg.Logger))
	}

	vaultAdmin := apikeyHTTP.AuthorizationMiddleware(apikeyDomain.CapabilityVaultAdmin, cfg.Logger)
	tokenOps := apikeyHTTP.AuthorizationMiddleware(apikeyDomain.CapabilityTokenOps, cfg.Logger)
	auditRead := apikeyHTTP.AuthorizationMiddleware(apikeyDomain.CapabilityAuditRead, cfg.Logger)

	// Vault management
	v1.POST("/vaults", vaultAdmin, cfg.VaultHandler.CreateHandler)
	v1.GET("/vaults", vaultAdmin, cfg.VaultHandler.ListHandler)
	v1.GET("/vaults/:id", vaultAdmin, cfg.VaultHandler.GetHandler)
	v1.PATCH("/vaults/:id", vaultAdmin, cfg.VaultHandler.UpdateHandler)
	v1.POST("/vaults/:id/activate", vaultAdmin, cfg.VaultHandler.ActivateHandler)
	v1.POST("/vaults/:id/deactivate", vaultAdmin, cfg.VaultHandler.DeactivateHandler)
	v1.POST("/vaults/:id/archive", vaultAdmin, cfg.VaultHandler.ArchiveHandler)
	v1.POST("/vaults/:id/rotate-key", vaultAdmin, cfg.VaultHandler.RotateKeyHandler)
	v1.GET("/vaults/:id/stats", vaultAdmin, cfg.VaultHandler.StatisticsHandler)

	// Token operations
	v1.POST("/vaults/:id/tokenize", tokenOps, cfg.TokenizationHandler.TokenizeHandler)
	v1.POST("/vaults/:id/detokenize", tokenOps, cfg.TokenizationHandler.DetokenizeHandler)
	v1.POST("/vaults/:id/bulk-tokenize", tokenOps, cfg.TokenizationHandler.BulkTokenizeHandler)
	v1.POST("/vaults/:id/bulk-detokenize", tokenOps, cfg.TokenizationHandler.BulkDetokenizeHandler)
	v1.POST("/vaults/:id/tokens/search", tokenOps, cfg.TokenizationHandler.SearchHandler)
	v1.POST("/vaults/:id/tokens/revoke", tokenOps, cfg.TokenizationHandler.RevokeHandler)
	v1.GET("/vaults/:id/tokens/stats", tokenOps, cfg.TokenizationHandler.StatisticsHandler)
	v1.GET("/vaults/:id/tokens/:value", tokenOps, cfg.TokenizationHandler.GetTokenHandler)

	// Audit trail
	v1.GET("/audit-logs", auditRead, cfg.AuditLogHandler.ListHandler)
	v1.GET("/audit-logs/summary", auditRead, cfg.AuditLogHandler.SummaryHandler)
	v1.GET("/audit-logs/:id", auditRead, cfg.AuditLogHandler.GetHandler)

	// Security alerts
	v1.GET("/security-alerts", auditRead, cfg.AlertHandler.ListHandler)
	v1.GET("/security-alerts/severity-counts", auditRead, cfg.AlertHandler.SeverityCountsHandler)
	v1.GET("/security-alerts/:id", auditRead, cfg.AlertHandler.GetHandler)
	v1.POST("/security-alerts/:id/acknowledge", auditRead, cfg.AlertHandler.AcknowledgeHandler)
	v1.POST("/security-alerts/:id/resolve", auditRead, cfg.AlertHandler.ResolveHandler)
	v1.POST("/security-alerts/:id/false-positive", auditRead, cfg.AlertHandler.FalsePositiveHandler)
	v1.POST("/security-alerts/bulk-acknowledge", auditRead, cfg.AlertHandler.BulkAcknowledgeHandler)
	v1.POST("/security-alerts/bulk-resolve", auditRead, cfg.AlertHandler.BulkResolveHandler)

	// Compliance reporting
	v1.POST("/compliance/reports", auditRead, cfg.ReportHandler.GenerateHandler)
	v1.GET("/compliance/reports", auditRead, cfg.ReportHandler.ListHandler)
	v1.GET("/compliance/reports/:id", auditRead, cfg.ReportHandler.GetHandler)
	v1.POST("/compliance/data", auditRead, cfg.ReportHandler.DataHandler)

	// API key management
	v1.POST("/api-keys", vaultAdmin, cfg.APIKeyHandler.CreateHandler)
	v1.GET("/api-keys", vaultAdmin, cfg.APIKeyHandler.ListHandler)
	v1.GET("/api-keys/:id", vaultAdmin, cfg.APIKeyHandler.GetHandler)
	v1.POST("/api-keys/:id/revoke", vaultAdmin, cfg.APIKeyHandler.RevokeHandler)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
