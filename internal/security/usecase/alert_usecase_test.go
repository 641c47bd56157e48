package usecase

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

	databaseMocks "github.com/allisson/tokenvault/internal/database/mocks"
	securityDomain "github.com/allisson/tokenvault/internal/security/domain"
	"github.com/allisson/tokenvault/internal/security/usecase/mocks"
)

type alertTestDeps struct {
	txManager *databaseMocks.MockTxManager
	alertRepo *mocks.MockAlertRepository
	useCase   AlertUseCase
}

func newAlertTestDeps() *alertTestDeps {
	deps := &alertTestDeps{
		txManager: &databaseMocks.MockTxManager{},
		alertRepo: &mocks.MockAlertRepository{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps.useCase = NewAlertUseCase(
		Config{AutoResolveAfter: 7 * 24 * time.Hour, SweepBatchSize: 100},
		deps.txManager,
		deps.alertRepo,
		logger,
	)
	return deps
}

func openAlert() *securityDomain.SecurityAlert {
	return securityDomain.NewSecurityAlert(securityDomain.Finding{
		AlertType:   securityDomain.AlertRepeatedFailures,
		Severity:    securityDomain.SeverityHigh,
		Description: "7 failed operations",
	}, nil, nil, "user-1", "203.0.113.7", time.Now().UTC().Add(-time.Hour))
}

func TestAlertUseCase_Acknowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OpenAlert", func(t *testing.T) {
		deps := newAlertTestDeps()
		alert := openAlert()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertRepo.On("Get", mock.Anything, alert.ID).Return(alert, nil).Once()
		deps.alertRepo.On("Update", mock.Anything, alert).Return(nil).Once()

		got, err := deps.useCase.Acknowledge(ctx, alert.ID, "analyst-1")

		require.NoError(t, err)
		assert.Equal(t, securityDomain.StatusAcknowledged, got.Status)
		require.NotNil(t, got.AcknowledgedBy)
		assert.Equal(t, "analyst-1", *got.AcknowledgedBy)
	})

	t.Run("Error_AlreadyResolved", func(t *testing.T) {
		deps := newAlertTestDeps()
		alert := openAlert()
		require.NoError(t, alert.Resolve("analyst-1", "", time.Now().UTC()))

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertRepo.On("Get", mock.Anything, alert.ID).Return(alert, nil).Once()

		_, err := deps.useCase.Acknowledge(ctx, alert.ID, "analyst-2")

		assert.ErrorIs(t, err, securityDomain.ErrInvalidAlertTransition)
		deps.alertRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAlertUseCase_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AcknowledgedAlert", func(t *testing.T) {
		deps := newAlertTestDeps()
		alert := openAlert()
		require.NoError(t, alert.Acknowledge("analyst-1", time.Now().UTC()))

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertRepo.On("Get", mock.Anything, alert.ID).Return(alert, nil).Once()
		deps.alertRepo.On("Update", mock.Anything, alert).Return(nil).Once()

		got, err := deps.useCase.Resolve(ctx, alert.ID, "analyst-1", "blocked the source")

		require.NoError(t, err)
		assert.Equal(t, securityDomain.StatusResolved, got.Status)
		require.NotNil(t, got.ResolutionNote)
		assert.Equal(t, "blocked the source", *got.ResolutionNote)
		assert.False(t, got.AutoResolved)
	})

	t.Run("Error_AlertNotFound", func(t *testing.T) {
		deps := newAlertTestDeps()
		alertID := uuid.Must(uuid.NewV7())

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.alertRepo.On("Get", mock.Anything, alertID).
			Return(nil, securityDomain.ErrAlertNotFound).Once()

		_, err := deps.useCase.Resolve(ctx, alertID, "analyst-1", "")
		assert.ErrorIs(t, err, securityDomain.ErrAlertNotFound)
	})
}

func TestAlertUseCase_MarkFalsePositive(t *testing.T) {
	ctx := context.Background()

	deps := newAlertTestDeps()
	alert := openAlert()

	deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
	deps.alertRepo.On("Get", mock.Anything, alert.ID).Return(alert, nil).Once()
	deps.alertRepo.On("Update", mock.Anything, alert).Return(nil).Once()

	got, err := deps.useCase.MarkFalsePositive(ctx, alert.ID, "analyst-1", "expected batch job")

	require.NoError(t, err)
	assert.Equal(t, securityDomain.StatusFalsePositive, got.Status)
}

func TestAlertUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DefaultsLimit", func(t *testing.T) {
		deps := newAlertTestDeps()

		deps.alertRepo.On("List", ctx, mock.MatchedBy(func(f securityDomain.ListFilter) bool {
			return f.Limit == 50
		})).Return([]*securityDomain.SecurityAlert{}, nil).Once()

		_, err := deps.useCase.List(ctx, securityDomain.ListFilter{})
		require.NoError(t, err)
		deps.alertRepo.AssertExpectations(t)
	})
}

func TestAlertUseCase_AutoResolveStale(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ResolvesStaleAlerts", func(t *testing.T) {
		deps := newAlertTestDeps()
		first := openAlert()
		second := openAlert()

		deps.alertRepo.On("ListStale", ctx, mock.AnythingOfType("time.Time"), 100).
			Return([]*securityDomain.SecurityAlert{first, second}, nil).Once()
		deps.alertRepo.On("Update", ctx, first).Return(nil).Once()
		deps.alertRepo.On("Update", ctx, second).Return(nil).Once()

		resolved, err := deps.useCase.AutoResolveStale(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, resolved)
		assert.Equal(t, securityDomain.StatusResolved, first.Status)
		assert.True(t, first.AutoResolved)
		require.NotNil(t, first.ResolvedBy)
		assert.Equal(t, "system", *first.ResolvedBy)
	})

	t.Run("Success_UpdateFailureSkipsAlert", func(t *testing.T) {
		deps := newAlertTestDeps()
		first := openAlert()
		second := openAlert()

		deps.alertRepo.On("ListStale", ctx, mock.AnythingOfType("time.Time"), 100).
			Return([]*securityDomain.SecurityAlert{first, second}, nil).Once()
		deps.alertRepo.On("Update", ctx, first).Return(assert.AnError).Once()
		deps.alertRepo.On("Update", ctx, second).Return(nil).Once()

		resolved, err := deps.useCase.AutoResolveStale(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, resolved)
	})

	t.Run("Success_NothingStale", func(t *testing.T) {
		deps := newAlertTestDeps()

		deps.alertRepo.On("ListStale", ctx, mock.AnythingOfType("time.Time"), 100).
			Return([]*securityDomain.SecurityAlert{}, nil).Once()

		resolved, err := deps.useCase.AutoResolveStale(ctx)
		require.NoError(t, err)
		assert.Zero(t, resolved)
	})
}
