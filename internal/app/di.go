// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	apikeyHTTP "github.com/allisson/tokenvault/internal/apikey/http"
	apikeyRepository "github.com/allisson/tokenvault/internal/apikey/repository"
	apikeyService "github.com/allisson/tokenvault/internal/apikey/service"
	apikeyUseCase "github.com/allisson/tokenvault/internal/apikey/usecase"
	auditHTTP "github.com/allisson/tokenvault/internal/audit/http"
	auditRepository "github.com/allisson/tokenvault/internal/audit/repository"
	auditUseCase "github.com/allisson/tokenvault/internal/audit/usecase"
	complianceHTTP "github.com/allisson/tokenvault/internal/compliance/http"
	complianceRepository "github.com/allisson/tokenvault/internal/compliance/repository"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
	"github.com/allisson/tokenvault/internal/config"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
	"github.com/allisson/tokenvault/internal/database"
	"github.com/allisson/tokenvault/internal/filestore"
	"github.com/allisson/tokenvault/internal/http"
	"github.com/allisson/tokenvault/internal/metrics"
	"github.com/allisson/tokenvault/internal/notification"
	queueRepository "github.com/allisson/tokenvault/internal/queue/repository"
	queueUseCase "github.com/allisson/tokenvault/internal/queue/usecase"
	securityHTTP "github.com/allisson/tokenvault/internal/security/http"
	securityRepository "github.com/allisson/tokenvault/internal/security/repository"
	securityService "github.com/allisson/tokenvault/internal/security/service"
	securityUseCase "github.com/allisson/tokenvault/internal/security/usecase"
	tokenizationHTTP "github.com/allisson/tokenvault/internal/tokenization/http"
	tokenizationRepository "github.com/allisson/tokenvault/internal/tokenization/repository"
	tokenizationService "github.com/allisson/tokenvault/internal/tokenization/service"
	tokenizationUseCase "github.com/allisson/tokenvault/internal/tokenization/usecase"
	vaultHTTP "github.com/allisson/tokenvault/internal/vault/http"
	vaultRepository "github.com/allisson/tokenvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"

	"gocloud.dev/secrets"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Crypto
	cipherManager cryptoService.CipherManager
	keeper        *secrets.Keeper
	keyResolver   cryptoService.KeyResolver
	encryptor     cryptoService.Encryptor
	hashService   cryptoService.HashService
	keyMaterial   cryptoService.KeyMaterialService

	// Notification
	notifier      notification.Notifier
	alertNotifier *notification.AlertNotifier
	jobEscalator  *notification.JobEscalator

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Artifacts
	blobStore *filestore.BlobStore

	// Repositories. Held as concrete types: several serve more than one
	// consumer-side interface (the audit repository doubles as the pattern
	// detector's history source, the job repository as the backlog counter).
	vaultRepo     *vaultRepository.PostgreSQLVaultRepository
	vaultKeyRepo  *vaultRepository.PostgreSQLVaultKeyRepository
	tokenRepo     *tokenizationRepository.PostgreSQLTokenRepository
	sequenceStore *tokenizationRepository.PostgreSQLSequenceStore
	auditRepo     *auditRepository.PostgreSQLAuditLogRepository
	alertRepo     *securityRepository.PostgreSQLAlertRepository
	reportRepo    *complianceRepository.PostgreSQLReportRepository
	jobRepo       *queueRepository.PostgreSQLJobRepository
	apiKeyRepo    *apikeyRepository.PostgreSQLAPIKeyRepository

	// Services
	generatorFactory *tokenizationService.GeneratorFactory
	keyService       apikeyService.KeyService
	patternDetector  *securityService.PatternDetector

	// Use Cases
	vaultUC        vaultUseCase.VaultUseCase
	tokenizationUC tokenizationUseCase.TokenizationUseCase
	auditUC        auditUseCase.AuditUseCase
	alertUC        securityUseCase.AlertUseCase
	complianceUC   complianceUseCase.ComplianceUseCase
	apiKeyUC       apikeyUseCase.APIKeyUseCase

	// Workers and Servers
	workerUC      *queueUseCase.WorkerUseCase
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// HTTP handlers
	vaultHandler        *vaultHTTP.VaultHandler
	tokenizationHandler *tokenizationHTTP.TokenizationHandler
	auditLogHandler     *auditHTTP.AuditLogHandler
	alertHandler        *securityHTTP.AlertHandler
	reportHandler       *complianceHTTP.ReportHandler
	apiKeyHandler       *apikeyHTTP.APIKeyHandler

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	txManagerInit           sync.Once
	cipherManagerInit       sync.Once
	keeperInit              sync.Once
	keyResolverInit         sync.Once
	encryptorInit           sync.Once
	hashServiceInit         sync.Once
	keyMaterialInit         sync.Once
	notifierInit            sync.Once
	alertNotifierInit       sync.Once
	jobEscalatorInit        sync.Once
	metricsProviderInit     sync.Once
	businessMetricsInit     sync.Once
	blobStoreInit           sync.Once
	vaultRepoInit           sync.Once
	vaultKeyRepoInit        sync.Once
	tokenRepoInit           sync.Once
	sequenceStoreInit       sync.Once
	auditRepoInit           sync.Once
	alertRepoInit           sync.Once
	reportRepoInit          sync.Once
	jobRepoInit             sync.Once
	apiKeyRepoInit          sync.Once
	generatorFactoryInit    sync.Once
	keyServiceInit          sync.Once
	patternDetectorInit     sync.Once
	vaultUCInit             sync.Once
	tokenizationUCInit      sync.Once
	auditUCInit             sync.Once
	alertUCInit             sync.Once
	complianceUCInit        sync.Once
	apiKeyUCInit            sync.Once
	workerUCInit            sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	vaultHandlerInit        sync.Once
	tokenizationHandlerInit sync.Once
	auditLogHandlerInit     sync.Once
	alertHandlerInit        sync.Once
	reportHandlerInit       sync.Once
	apiKeyHandlerInit       sync.Once
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Notifier returns the notification delivery backend. A configured webhook URL
// enables webhook delivery behind a circuit breaker; otherwise notifications
// go to the log.
func (c *Container) Notifier() notification.Notifier {
	c.notifierInit.Do(func() {
		c.notifier = c.initNotifier()
	})
	return c.notifier
}

// AlertNotifier returns the security alert notification adapter.
func (c *Container) AlertNotifier() *notification.AlertNotifier {
	c.alertNotifierInit.Do(func() {
		c.alertNotifier = notification.NewAlertNotifier(c.Notifier(), c.Logger())
	})
	return c.alertNotifier
}

// JobEscalator returns the exhausted-job escalation adapter.
func (c *Container) JobEscalator() *notification.JobEscalator {
	c.jobEscalatorInit.Do(func() {
		c.jobEscalator = notification.NewJobEscalator(c.Notifier(), c.Logger())
	})
	return c.jobEscalator
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op
// implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// BlobStore returns the compliance artifact store.
func (c *Container) BlobStore() (*filestore.BlobStore, error) {
	var err error
	c.blobStoreInit.Do(func() {
		c.blobStore, err = c.initBlobStore()
		if err != nil {
			c.initErrors["blobStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blobStore"]; exists {
		return nil, storedErr
	}
	return c.blobStore, nil
}

// HTTPServer returns the HTTP API server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server instance.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close artifact store if initialized
	if c.blobStore != nil {
		if err := c.blobStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("artifact store close: %w", err))
		}
	}

	// Close KMS keeper if initialized
	if c.keeper != nil {
		if err := c.keeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initNotifier creates the notification backend based on configuration.
func (c *Container) initNotifier() notification.Notifier {
	if c.config.NotificationWebhookURL == "" {
		return notification.NewLogNotifier(c.Logger())
	}
	webhook := notification.NewWebhookNotifier(
		c.config.NotificationWebhookURL,
		c.config.NotificationWebhookTimeout,
	)
	return notification.NewBreakerNotifier(webhook)
}

// initMetricsProvider creates the metrics provider and registers the queue
// backlog gauge against the job repository.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}

	jobRepo, err := c.QueueJobRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get job repository for queue gauge: %w", err)
	}

	if err := metrics.RegisterQueueBacklogGauge(provider.MeterProvider(), c.config.MetricsNamespace, jobRepo); err != nil {
		return nil, fmt.Errorf("failed to register queue backlog gauge: %w", err)
	}

	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initBlobStore opens the compliance artifact bucket.
func (c *Container) initBlobStore() (*filestore.BlobStore, error) {
	store, err := filestore.OpenBlobStore(context.Background(), c.config.ArtifactBucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	return store, nil
}

// initHTTPServer creates the HTTP API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	apiKeyUC, err := c.APIKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key use case for http server: %w", err)
	}

	vaultHandler, err := c.VaultHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault handler for http server: %w", err)
	}

	tokenizationHandler, err := c.TokenizationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenization handler for http server: %w", err)
	}

	auditLogHandler, err := c.AuditLogHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log handler for http server: %w", err)
	}

	alertHandler, err := c.AlertHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get alert handler for http server: %w", err)
	}

	reportHandler, err := c.ReportHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get report handler for http server: %w", err)
	}

	apiKeyHandler, err := c.APIKeyHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		Logger:                  c.Logger(),
		APIKeyUseCase:           apiKeyUC,
		VaultHandler:            vaultHandler,
		TokenizationHandler:     tokenizationHandler,
		AuditLogHandler:         auditLogHandler,
		AlertHandler:            alertHandler,
		ReportHandler:           reportHandler,
		APIKeyHandler:           apiKeyHandler,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		MetricsProvider:         metricsProvider,
		MetricsNamespace:        c.config.MetricsNamespace,
		GinMode:                 c.config.GetGinMode(),
	}

	return http.NewServer(c.config.ServerHost, c.config.ServerPort, routerConfig), nil
}

// initMetricsServer creates the Prometheus metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("metrics are disabled")
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
