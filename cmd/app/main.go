// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenvault/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "tokenvault",
		Usage:   "PCI-DSS tokenization vault",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP API server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the queue worker for audit and compliance report jobs",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "scheduler",
				Usage: "Start the periodic maintenance scheduler",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunScheduler(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-vault",
				Usage: "Create a new tokenization vault",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Unique vault name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Human-readable vault description",
					},
					&cli.StringFlag{
						Name:     "data-type",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Data classification: card, ssn, bank_account or custom",
					},
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"alg"},
						Value:   "aes-256-gcm",
						Usage:   "Encryption algorithm: aes-256-gcm, aes-256-cbc or chacha20-poly1305",
					},
					&cli.StringFlag{
						Name:    "operations",
						Aliases: []string{"o"},
						Usage:   "Comma-separated allowed operations (omit to allow all)",
					},
					&cli.Int64Flag{
						Name:  "max-tokens",
						Usage: "Maximum number of active tokens (0 for unlimited)",
					},
					&cli.IntFlag{
						Name:  "retention-days",
						Usage: "Token retention period in days (0 for no expiry)",
					},
					&cli.IntFlag{
						Name:  "rotation-interval-days",
						Value: 90,
						Usage: "Key rotation interval in days",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateVault(ctx, commands.CreateVaultOptions{
						Name:                    cmd.String("name"),
						Description:             cmd.String("description"),
						DataType:                cmd.String("data-type"),
						Algorithm:               cmd.String("algorithm"),
						Operations:              cmd.String("operations"),
						MaxTokens:               cmd.Int64("max-tokens"),
						RetentionDays:           cmd.Int("retention-days"),
						KeyRotationIntervalDays: cmd.Int("rotation-interval-days"),
						Format:                  cmd.String("format"),
					})
				},
			},
			{
				Name:  "rotate-vault-keys",
				Usage: "Rotate vault encryption keys (all due vaults, or one by ID)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "vault-id",
						Aliases: []string{"i"},
						Usage:   "Vault ID (omit to rotate every vault whose interval elapsed)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateVaultKeys(ctx, cmd.String("vault-id"))
				},
			},
			{
				Name:  "clean-expired-tokens",
				Usage: "Transition elapsed active tokens to expired",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Value:   1000,
						Usage:   "Maximum number of tokens expired in one run",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanExpiredTokens(ctx, cmd.Int("batch-size"))
				},
			},
			{
				Name:  "archive-audit-logs",
				Usage: "Archive audit logs past the retention window",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunArchiveAuditLogs(ctx)
				},
			},
			{
				Name:  "auto-resolve-alerts",
				Usage: "Close security alerts with no recent activity",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAutoResolveAlerts(ctx)
				},
			},
			{
				Name:  "generate-report",
				Usage: "Queue a compliance report for generation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ruleset",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Compliance ruleset: pci_dss, sox or gdpr",
					},
					&cli.StringFlag{
						Name:    "vault-id",
						Aliases: []string{"i"},
						Usage:   "Scope the report to one vault (omit for all vaults)",
					},
					&cli.StringFlag{
						Name:     "period-start",
						Required: true,
						Usage:    "Reporting period start (RFC3339)",
					},
					&cli.StringFlag{
						Name:     "period-end",
						Required: true,
						Usage:    "Reporting period end (RFC3339)",
					},
					&cli.StringFlag{
						Name:  "requested-by",
						Value: "cli",
						Usage: "Requester recorded on the report",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGenerateReport(ctx, commands.GenerateReportOptions{
						Ruleset:     cmd.String("ruleset"),
						VaultID:     cmd.String("vault-id"),
						PeriodStart: cmd.String("period-start"),
						PeriodEnd:   cmd.String("period-end"),
						RequestedBy: cmd.String("requested-by"),
					})
				},
			},
			{
				Name:  "create-api-key",
				Usage: "Create a new API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Unique key name",
					},
					&cli.StringFlag{
						Name:     "role",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Key role: admin, operator or auditor",
					},
					&cli.IntFlag{
						Name:    "expires-in-days",
						Aliases: []string{"e"},
						Usage:   "Days until the key expires (0 for no expiry)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateAPIKey(
						ctx,
						cmd.String("name"),
						cmd.String("role"),
						cmd.Int("expires-in-days"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
