// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/tokenvault/internal/app"
	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
)

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// cliRequestContext attributes audit events produced by CLI commands.
func cliRequestContext() auditDomain.RequestContext {
	return auditDomain.RequestContext{
		UserID:    "cli",
		IPAddress: "127.0.0.1",
		UserAgent: "tokenvault-cli",
	}
}
