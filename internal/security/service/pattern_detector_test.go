package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	databaseMocks "github.com/allisson/tokenvault/internal/database/mocks"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
	"github.com/allisson/tokenvault/internal/security/service/mocks"
)

type detectorTestDeps struct {
	txManager  *databaseMocks.MockTxManager
	history    *mocks.MockAuditHistory
	alertStore *mocks.MockAlertStore
	notifier   *mocks.MockNotifier
	detector   *PatternDetector
}

func newDetectorTestDeps() *detectorTestDeps {
	deps := &detectorTestDeps{
		txManager:  &databaseMocks.MockTxManager{},
		history:    &mocks.MockAuditHistory{},
		alertStore: &mocks.MockAlertStore{},
		notifier:   &mocks.MockNotifier{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps.detector = NewPatternDetector(deps.txManager, deps.history, deps.alertStore, deps.notifier, logger)
	return deps
}

// quietHistory reports nothing suspicious for the record's IP.
func (d *detectorTestDeps) quietHistory(ctx context.Context, log *auditDomain.AuditLog) {
	d.history.On("CountFailuresByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
		Return(int64(0), nil).Once()
	d.history.On("CountOperationsByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
		Return(int64(0), nil).Once()
	d.history.On("HasActivityFromIPBefore", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()
}

// memoryAlertStore is a stateful AlertStore so create-then-merge sequences
// can be driven through the real detector.
type memoryAlertStore struct {
	alerts []*securityDomain.SecurityAlert
}

func (s *memoryAlertStore) Create(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *memoryAlertStore) GetOpenForMerge(
	ctx context.Context,
	alertType securityDomain.AlertType,
	vaultID *uuid.UUID,
	ipAddress string,
	since time.Time,
) (*securityDomain.SecurityAlert, error) {
	for _, alert := range s.alerts {
		if alert.AlertType != alertType || alert.IPAddress != ipAddress {
			continue
		}
		if !alert.IsOpen() || alert.CreatedAt.Before(since) {
			continue
		}
		if (vaultID == nil) != (alert.VaultID == nil) {
			continue
		}
		if vaultID != nil && *vaultID != *alert.VaultID {
			continue
		}
		return alert, nil
	}
	return nil, securityDomain.ErrAlertNotFound
}

func (s *memoryAlertStore) Update(ctx context.Context, alert *securityDomain.SecurityAlert) error {
	return nil
}

// middayLog avoids the off-hours window so only the rules under test fire.
func middayLog(operation string) *auditDomain.AuditLog {
	vaultID := uuid.Must(uuid.NewV7())
	created := time.Date(2025, 6, 16, 14, 30, 0, 0, time.UTC)
	return &auditDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		VaultID:   &vaultID,
		Operation: operation,
		Result:    auditDomain.ResultSuccess,
		UserID:    "user-1",
		IPAddress: "203.0.113.7",
		RiskLevel: auditDomain.RiskLow,
		CreatedAt: created,
	}
}

func TestPatternDetector_Inspect(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NoFindingsRaisesNothing", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpSearch)
		deps.quietHistory(ctx, log)

		err := deps.detector.Inspect(ctx, log)

		require.NoError(t, err)
		deps.alertStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		deps.notifier.AssertNotCalled(t, "AlertRaised", mock.Anything, mock.Anything)
	})

	t.Run("Success_FailureSpikeRaisesAlert", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpSearch)

		deps.history.On("CountFailuresByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(7), nil).Once()
		deps.history.On("CountOperationsByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).Once()
		deps.history.On("HasActivityFromIPBefore", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertStore.On("GetOpenForMerge", mock.Anything, securityDomain.AlertRepeatedFailures, log.VaultID, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(nil, securityDomain.ErrAlertNotFound).Once()

		var created *securityDomain.SecurityAlert
		deps.alertStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.SecurityAlert")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*securityDomain.SecurityAlert)
			}).
			Return(nil).Once()
		deps.notifier.On("AlertRaised", ctx, mock.AnythingOfType("*domain.SecurityAlert")).Once()

		err := deps.detector.Inspect(ctx, log)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, securityDomain.AlertRepeatedFailures, created.AlertType)
		assert.Equal(t, securityDomain.SeverityHigh, created.Severity)
		assert.Equal(t, securityDomain.StatusOpen, created.Status)
		// The alert opens with the full observed failure count.
		assert.Equal(t, int64(7), created.OccurrenceCount)
		assert.Equal(t, &log.ID, created.TriggeringAuditLogID)
		deps.notifier.AssertExpectations(t)
	})

	t.Run("Success_RepeatedFindingMergesIntoOpenAlert", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpSearch)

		deps.history.On("CountFailuresByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(7), nil).Once()
		deps.history.On("CountOperationsByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).Once()
		deps.history.On("HasActivityFromIPBefore", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()

		existing := securityDomain.NewSecurityAlert(securityDomain.Finding{
			AlertType:   securityDomain.AlertRepeatedFailures,
			Severity:    securityDomain.SeverityHigh,
			Occurrences: 5,
		}, log.VaultID, nil, log.UserID, log.IPAddress, time.Now().UTC().Add(-time.Hour))

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertStore.On("GetOpenForMerge", mock.Anything, securityDomain.AlertRepeatedFailures, log.VaultID, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(existing, nil).Once()
		deps.alertStore.On("Update", mock.Anything, existing).Return(nil).Once()

		err := deps.detector.Inspect(ctx, log)

		require.NoError(t, err)
		// The merged alert adopts the larger in-window failure count.
		assert.Equal(t, int64(7), existing.OccurrenceCount)
		deps.alertStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		deps.notifier.AssertNotCalled(t, "AlertRaised", mock.Anything, mock.Anything)
	})

	t.Run("Success_FailureSpikeCountTracksObservedFailures", func(t *testing.T) {
		deps := newDetectorTestDeps()
		store := &memoryAlertStore{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		detector := NewPatternDetector(deps.txManager, deps.history, store, nil, logger)

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Twice()

		// Sixth failed detokenize from the IP crosses the threshold.
		sixth := middayLog(auditDomain.OpDetokenize)
		sixth.Result = auditDomain.ResultFailure
		deps.history.On("CountFailuresByIPSince", ctx, sixth.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(6), nil).Once()
		deps.history.On("CountOperationsByIPSince", ctx, sixth.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(6), nil).Once()
		deps.history.On("HasActivityFromIPBefore", ctx, sixth.IPAddress, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()

		require.NoError(t, detector.Inspect(ctx, sixth))
		require.Len(t, store.alerts, 1)
		assert.Equal(t, int64(6), store.alerts[0].OccurrenceCount)

		// Seventh failure merges into the same alert and moves the count to 7.
		seventh := middayLog(auditDomain.OpDetokenize)
		seventh.Result = auditDomain.ResultFailure
		seventh.VaultID = sixth.VaultID
		deps.history.On("CountFailuresByIPSince", ctx, seventh.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(7), nil).Once()
		deps.history.On("CountOperationsByIPSince", ctx, seventh.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(7), nil).Once()
		deps.history.On("HasActivityFromIPBefore", ctx, seventh.IPAddress, mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()

		require.NoError(t, detector.Inspect(ctx, seventh))
		require.Len(t, store.alerts, 1)
		assert.Equal(t, int64(7), store.alerts[0].OccurrenceCount)
	})

	t.Run("Success_AnonymousSourceSkipsHistoryLookups", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpSearch)
		log.IPAddress = "unknown"

		err := deps.detector.Inspect(ctx, log)

		require.NoError(t, err)
		deps.history.AssertNotCalled(t, "CountFailuresByIPSince", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_HighRiskRecordRaisesAlert", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpDetokenize)
		log.RiskLevel = auditDomain.RiskHigh
		deps.quietHistory(ctx, log)

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertStore.On("GetOpenForMerge", mock.Anything, securityDomain.AlertHighRiskOp, log.VaultID, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(nil, securityDomain.ErrAlertNotFound).Once()
		deps.alertStore.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		deps.notifier.On("AlertRaised", ctx, mock.Anything).Once()

		err := deps.detector.Inspect(ctx, log)
		require.NoError(t, err)
		deps.alertStore.AssertExpectations(t)
	})

	t.Run("Success_MultipleFindingsRaiseMultipleAlerts", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpBulkDetokenize)
		log.RiskLevel = auditDomain.RiskHigh
		log.RequestMetadata = map[string]any{"item_count": float64(5000)}
		deps.quietHistory(ctx, log)

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Twice()
		deps.alertStore.On("GetOpenForMerge", mock.Anything, mock.Anything, log.VaultID, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(nil, securityDomain.ErrAlertNotFound).Twice()

		var types []securityDomain.AlertType
		deps.alertStore.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				types = append(types, args.Get(1).(*securityDomain.SecurityAlert).AlertType)
			}).
			Return(nil).Twice()
		deps.notifier.On("AlertRaised", ctx, mock.Anything).Twice()

		err := deps.detector.Inspect(ctx, log)

		require.NoError(t, err)
		assert.ElementsMatch(t, []securityDomain.AlertType{
			securityDomain.AlertLargeBulk,
			securityDomain.AlertHighRiskOp,
		}, types)
	})

	t.Run("Error_HistoryLookupFailure", func(t *testing.T) {
		deps := newDetectorTestDeps()
		log := middayLog(auditDomain.OpSearch)

		deps.history.On("CountFailuresByIPSince", ctx, log.IPAddress, mock.AnythingOfType("time.Time")).
			Return(int64(0), assert.AnError).Once()

		err := deps.detector.Inspect(ctx, log)
		assert.Error(t, err)
	})
}
