// Package app provides the dependency injection container that assembles the application.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/sealedrecords/internal/config"
	"github.com/allisson/sealedrecords/internal/database"
	"github.com/allisson/sealedrecords/internal/http"
	"github.com/allisson/sealedrecords/internal/metrics"
)

// Container holds all application dependencies. Components are created on first access
// and shared afterwards.
type Container struct {
	config *config.Config

	loggerOnce sync.Once
	logger     *slog.Logger

	db        lazy[*sql.DB]
	txManager lazy[database.TxManager]

	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	cryptoComponents
	recordComponents

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	shutdownMu sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger writing to stdout at the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(c.config.LogLevel),
		}))
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(func() (*sql.DB, error) {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	})
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are
// disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		return businessMetrics, nil
	})
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(func() (*http.Server, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}

		recordHandler, err := c.RecordHandler()
		if err != nil {
			return nil, fmt.Errorf("failed to get record handler for http server: %w", err)
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}

		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		server.SetupRouter(http.RouterConfig{
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
			RateLimitEnabled: c.config.RateLimitEnabled,
			RateLimitRPS:     c.config.RateLimitRequestsPerSec,
			RateLimitBurst:   c.config.RateLimitBurst,
			MetricsNamespace: c.config.MetricsNamespace,
		}, recordHandler, provider)

		return server, nil
	})
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every initialized resource: servers first, then the metrics provider,
// the database and finally the master keys.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()

	var errs []error

	if server, ok := c.httpServer.peek(); ok {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if server, ok := c.metricsServer.peek(); ok && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if provider, ok := c.metricsProvider.peek(); ok && provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if db, ok := c.db.peek(); ok {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if registry, ok := c.masterKeyRegistry.peek(); ok {
		registry.Close()
	}

	return errors.Join(errs...)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
