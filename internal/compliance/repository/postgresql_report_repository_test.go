package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	"github.com/allisson/tokenvault/internal/testutil"
)

func buildTestReport() *complianceDomain.ComplianceReport {
	periodStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	return complianceDomain.NewComplianceReport(complianceDomain.RulesetPCIDSS, nil, periodStart, periodEnd, "auditor-1")
}

func insertAuditRow(
	t *testing.T,
	db *sql.DB,
	operation, result, riskLevel, userID string,
	pciRelevant bool,
	createdAt time.Time,
) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO audit_logs (id, operation, result, user_id, risk_level, pci_relevant, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.Must(uuid.NewV7()),
		operation,
		result,
		userID,
		riskLevel,
		pciRelevant,
		createdAt,
	)
	require.NoError(t, err, "failed to insert audit row")
}

func TestNewPostgreSQLReportRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLReportRepository{}, repo)
}

func TestPostgreSQLReportRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	report := buildTestReport()
	err := repo.Create(ctx, report)
	require.NoError(t, err)

	retrieved, err := repo.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, retrieved.ID)
	assert.Equal(t, complianceDomain.RulesetPCIDSS, retrieved.Ruleset)
	assert.Nil(t, retrieved.VaultID)
	assert.Equal(t, report.PeriodStart, retrieved.PeriodStart.UTC())
	assert.Equal(t, report.PeriodEnd, retrieved.PeriodEnd.UTC())
	assert.Equal(t, complianceDomain.ReportPending, retrieved.Status)
	assert.Equal(t, 0, retrieved.Progress)
	assert.Nil(t, retrieved.Score)
	assert.Nil(t, retrieved.RiskBand)
	assert.Equal(t, "auditor-1", retrieved.RequestedBy)
	assert.Nil(t, retrieved.StartedAt)
	assert.Nil(t, retrieved.CompletedAt)
}

func TestPostgreSQLReportRepository_Get_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	report, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, complianceDomain.ErrReportNotFound)
}

func TestPostgreSQLReportRepository_Update_Lifecycle(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	report := buildTestReport()
	require.NoError(t, repo.Create(ctx, report))

	report.Start(now)
	require.NoError(t, repo.Update(ctx, report))

	result := &complianceDomain.ScoringResult{
		Score: 85,
		Band:  complianceDomain.BandMedium,
		Violations: []complianceDomain.Violation{
			{
				RequirementID: "AC-OFF-HOURS",
				Description:   "off-hours access to cardholder data",
				Severity:      "medium",
				Count:         12,
				Penalty:       15,
			},
		},
		Recommendations: []string{"review off-hours access policy"},
	}
	report.Complete(result, 1000, "/artifacts/report.json", "abc123", now)
	require.NoError(t, repo.Update(ctx, report))

	retrieved, err := repo.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, complianceDomain.ReportCompleted, retrieved.Status)
	assert.Equal(t, 100, retrieved.Progress)
	require.NotNil(t, retrieved.Score)
	assert.Equal(t, 85, *retrieved.Score)
	require.NotNil(t, retrieved.RiskBand)
	assert.Equal(t, complianceDomain.BandMedium, *retrieved.RiskBand)
	require.Len(t, retrieved.Violations, 1)
	assert.Equal(t, "AC-OFF-HOURS", retrieved.Violations[0].RequirementID)
	assert.Equal(t, int64(12), retrieved.Violations[0].Count)
	assert.Equal(t, []string{"review off-hours access policy"}, retrieved.Recommendations)
	assert.Equal(t, int64(1000), retrieved.RecordCount)
	require.NotNil(t, retrieved.ArtifactPath)
	assert.Equal(t, "/artifacts/report.json", *retrieved.ArtifactPath)
	require.NotNil(t, retrieved.ArtifactHash)
	assert.Equal(t, "abc123", *retrieved.ArtifactHash)
	require.NotNil(t, retrieved.StartedAt)
	require.NotNil(t, retrieved.CompletedAt)
}

func TestPostgreSQLReportRepository_Update_Failed(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	report := buildTestReport()
	require.NoError(t, repo.Create(ctx, report))

	report.Start(now)
	report.Fail("audit aggregation query failed", now)
	require.NoError(t, repo.Update(ctx, report))

	retrieved, err := repo.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, complianceDomain.ReportFailed, retrieved.Status)
	require.NotNil(t, retrieved.ErrorMessage)
	assert.Equal(t, "audit aggregation query failed", *retrieved.ErrorMessage)
}

func TestPostgreSQLReportRepository_Update_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	report := buildTestReport()
	err := repo.Update(ctx, report)
	assert.ErrorIs(t, err, complianceDomain.ErrReportNotFound)
}

func TestPostgreSQLReportRepository_List(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	first := buildTestReport()
	require.NoError(t, repo.Create(ctx, first))

	second := buildTestReport()
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	// Newest first
	reports, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, first.ID, reports[1].ID)

	// Pagination
	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestPostgreSQLReportRepository_GatherWindowStats(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	midday := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	offHours := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	insertAuditRow(t, db, "tokenize", "success", "low", "user-a", true, midday)
	insertAuditRow(t, db, "detokenize", "failure", "low", "user-a", true, midday)
	insertAuditRow(t, db, "detokenize", "success", "high", "user-b", true, offHours)

	// Non-PCI records do not count toward the window totals
	insertAuditRow(t, db, "search", "success", "low", "user-b", false, midday)

	// Records outside the window are ignored
	insertAuditRow(t, db, "tokenize", "failure", "low", "user-a", true, from.AddDate(0, -1, 0))

	// Bulk detokenize bursts per user
	for i := 0; i < 3; i++ {
		insertAuditRow(t, db, "bulk_detokenize", "success", "low", "user-c", true, midday)
	}
	insertAuditRow(t, db, "bulk_detokenize", "success", "low", "user-b", true, midday)

	stats, err := repo.GatherWindowStats(ctx, from, to, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, int64(1), stats.HighRisk)
	assert.Equal(t, int64(1), stats.OffHours)
	assert.Equal(t, int64(3), stats.MaxBulkDetokenizePerUser)

	// user-a tokenized and detokenized, user-b detokenized and bulk detokenized,
	// user-c only bulk detokenized
	assert.Equal(t, int64(1), stats.DualRoleUsers)
}

func TestPostgreSQLReportRepository_GatherWindowStats_VaultScoped(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLReportRepository(db)
	ctx := context.Background()

	vaultID := testutil.CreateTestVault(t, db, "report-vault")

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	midday := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, vault_id, operation, result, user_id, risk_level, pci_relevant, created_at)
		 VALUES ($1, $2, 'tokenize', 'success', 'user-a', 'low', true, $3)`,
		uuid.Must(uuid.NewV7()), vaultID, midday,
	)
	require.NoError(t, err)

	// A record for no particular vault
	insertAuditRow(t, db, "tokenize", "success", "low", "user-b", true, midday)

	stats, err := repo.GatherWindowStats(ctx, from, to, &vaultID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	stats, err = repo.GatherWindowStats(ctx, from, to, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
}
