package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tokenvault/internal/app"
	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
	"github.com/allisson/tokenvault/internal/config"
)

// GenerateReportOptions holds the flag values for the generate-report command.
type GenerateReportOptions struct {
	Ruleset     string
	VaultID     string
	PeriodStart string
	PeriodEnd   string
	RequestedBy string
}

// RunGenerateReport creates a pending compliance report and enqueues the
// batch job that generates it. The worker must be running for the report to
// complete.
func RunGenerateReport(ctx context.Context, opts GenerateReportOptions) error {
	ruleset := complianceDomain.Ruleset(opts.Ruleset)
	if err := ruleset.Validate(); err != nil {
		return fmt.Errorf("invalid ruleset: %s (valid options: pci_dss, sox, gdpr)", opts.Ruleset)
	}

	periodStart, err := time.Parse(time.RFC3339, opts.PeriodStart)
	if err != nil {
		return fmt.Errorf("invalid period-start: %w", err)
	}

	periodEnd, err := time.Parse(time.RFC3339, opts.PeriodEnd)
	if err != nil {
		return fmt.Errorf("invalid period-end: %w", err)
	}

	var vaultID *uuid.UUID
	if opts.VaultID != "" {
		id, err := uuid.Parse(opts.VaultID)
		if err != nil {
			return fmt.Errorf("invalid vault id: %w", err)
		}
		vaultID = &id
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()

	defer closeContainer(container, logger)

	complianceUC, err := container.ComplianceUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize compliance use case: %w", err)
	}

	input := &complianceUseCase.GenerateReportInput{
		Ruleset:     ruleset,
		VaultID:     vaultID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		RequestedBy: opts.RequestedBy,
	}

	report, err := complianceUC.GenerateReport(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	fmt.Printf("Queued %s report %s for period %s to %s\n",
		report.Ruleset,
		report.ID,
		periodStart.Format(time.RFC3339),
		periodEnd.Format(time.RFC3339),
	)

	return nil
}
