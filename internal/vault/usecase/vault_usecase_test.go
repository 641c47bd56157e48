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

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	databaseMocks "github.com/allisson/tokenvault/internal/database/mocks"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	vaultMocks "github.com/allisson/tokenvault/internal/vault/usecase/mocks"
)

type vaultTestDeps struct {
	txManager   *databaseMocks.MockTxManager
	vaultRepo   *vaultMocks.MockVaultRepository
	keyRepo     *vaultMocks.MockVaultKeyRepository
	keyMaterial *vaultMocks.MockKeyMaterialService
	auditLogger *vaultMocks.MockAuditLogger
	useCase     VaultUseCase
}

func newVaultTestDeps() *vaultTestDeps {
	deps := &vaultTestDeps{
		txManager:   &databaseMocks.MockTxManager{},
		vaultRepo:   &vaultMocks.MockVaultRepository{},
		keyRepo:     &vaultMocks.MockVaultKeyRepository{},
		keyMaterial: &vaultMocks.MockKeyMaterialService{},
		auditLogger: &vaultMocks.MockAuditLogger{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps.useCase = NewVaultUseCase(
		deps.txManager,
		deps.vaultRepo,
		deps.keyRepo,
		deps.keyMaterial,
		deps.auditLogger,
		logger,
	)
	return deps
}

func (d *vaultTestDeps) expectAudit() {
	d.auditLogger.On("LogEvent", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Return(uuid.Must(uuid.NewV7()), nil)
}

func activeVault() *vaultDomain.Vault {
	now := time.Now().UTC()
	return &vaultDomain.Vault{
		ID:                      uuid.Must(uuid.NewV7()),
		Name:                    "payments",
		DataType:                vaultDomain.DataTypeCard,
		Status:                  vaultDomain.StatusActive,
		EncryptionAlgorithm:     cryptoDomain.AESGCM,
		MaxTokens:               1000,
		CurrentTokenCount:       10,
		AllowedOperations:       []vaultDomain.Operation{vaultDomain.OperationTokenize, vaultDomain.OperationDetokenize},
		KeyRotationIntervalDays: 90,
		LastKeyRotation:         &now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func validCreateInput() *CreateVaultInput {
	return &CreateVaultInput{
		Name:                    "payments",
		Description:             "cardholder data",
		DataType:                vaultDomain.DataTypeCard,
		EncryptionAlgorithm:     cryptoDomain.AESGCM,
		AllowedOperations:       []vaultDomain.Operation{vaultDomain.OperationTokenize},
		MaxTokens:               1000,
		RetentionDays:           365,
		KeyRotationIntervalDays: 90,
	}
}

func TestVaultUseCase_Create(t *testing.T) {
	ctx := context.Background()
	reqCtx := auditDomain.RequestContext{UserID: "admin", IPAddress: "10.0.0.1"}

	t.Run("Success_CreatesVaultWithFirstKey", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()

		deps.keyMaterial.On("Generate", ctx, mock.AnythingOfType("string")).
			Return(nil, "key-hash", nil).Once()
		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.vaultRepo.On("Create", mock.Anything, mock.MatchedBy(func(v *vaultDomain.Vault) bool {
			return v.Name == "payments" &&
				v.Status == vaultDomain.StatusActive &&
				v.EncryptionKeyReference == vaultDomain.NewKeyReference(v.ID, 1)
		})).Return(nil).Once()
		deps.keyRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *vaultDomain.VaultKey) bool {
			return k.KeyVersion == 1 &&
				k.Status == vaultDomain.KeyStatusActive &&
				k.KeyHash == "key-hash"
		})).Return(nil).Once()

		vault, err := deps.useCase.Create(ctx, validCreateInput(), reqCtx)

		require.NoError(t, err)
		assert.Equal(t, "payments", vault.Name)
		assert.NotNil(t, vault.LastKeyRotation)
		deps.vaultRepo.AssertExpectations(t)
		deps.keyRepo.AssertExpectations(t)
	})

	t.Run("Error_MissingName", func(t *testing.T) {
		deps := newVaultTestDeps()
		input := validCreateInput()
		input.Name = ""

		_, err := deps.useCase.Create(ctx, input, reqCtx)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_InvalidDataType", func(t *testing.T) {
		deps := newVaultTestDeps()
		input := validCreateInput()
		input.DataType = "passport"

		_, err := deps.useCase.Create(ctx, input, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidDataType)
	})

	t.Run("Error_InvalidAlgorithm", func(t *testing.T) {
		deps := newVaultTestDeps()
		input := validCreateInput()
		input.EncryptionAlgorithm = "rot13"

		_, err := deps.useCase.Create(ctx, input, reqCtx)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("Error_NonPositiveMaxTokens", func(t *testing.T) {
		deps := newVaultTestDeps()
		input := validCreateInput()
		input.MaxTokens = 0

		_, err := deps.useCase.Create(ctx, input, reqCtx)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_NoAllowedOperations", func(t *testing.T) {
		deps := newVaultTestDeps()
		input := validCreateInput()
		input.AllowedOperations = nil

		_, err := deps.useCase.Create(ctx, input, reqCtx)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_DuplicateName", func(t *testing.T) {
		deps := newVaultTestDeps()

		deps.keyMaterial.On("Generate", ctx, mock.AnythingOfType("string")).
			Return(nil, "key-hash", nil).Once()
		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.vaultRepo.On("Create", mock.Anything, mock.Anything).
			Return(vaultDomain.ErrVaultNameTaken).Once()

		_, err := deps.useCase.Create(ctx, validCreateInput(), reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrVaultNameTaken)
	})
}

func TestVaultUseCase_Update(t *testing.T) {
	ctx := context.Background()
	reqCtx := auditDomain.RequestContext{UserID: "admin"}

	t.Run("Success_PartialUpdate", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()

		newDescription := "updated description"
		newMax := int64(2000)

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()
		deps.vaultRepo.On("Update", ctx, vault).Return(nil).Once()

		updated, err := deps.useCase.Update(ctx, vault.ID, &UpdateVaultInput{
			Description: &newDescription,
			MaxTokens:   &newMax,
		}, reqCtx)

		require.NoError(t, err)
		assert.Equal(t, "updated description", updated.Description)
		assert.Equal(t, int64(2000), updated.MaxTokens)
		// Untouched fields stay as they were.
		assert.Equal(t, 90, updated.KeyRotationIntervalDays)
	})

	t.Run("Error_MaxTokensBelowCurrentCount", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()
		vault.CurrentTokenCount = 500

		tooSmall := int64(100)
		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.Update(ctx, vault.ID, &UpdateVaultInput{MaxTokens: &tooSmall}, reqCtx)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_InvalidOperationInPolicy", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.Update(ctx, vault.ID, &UpdateVaultInput{
			AllowedOperations: []vaultDomain.Operation{"delete"},
		}, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidOperation)
	})

	t.Run("Error_VaultNotFound", func(t *testing.T) {
		deps := newVaultTestDeps()
		vaultID := uuid.Must(uuid.NewV7())

		deps.vaultRepo.On("Get", ctx, vaultID).Return(nil, vaultDomain.ErrVaultNotFound).Once()

		_, err := deps.useCase.Update(ctx, vaultID, &UpdateVaultInput{}, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrVaultNotFound)
	})
}

func TestVaultUseCase_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	reqCtx := auditDomain.RequestContext{UserID: "admin"}

	t.Run("Success_Deactivate", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()
		deps.vaultRepo.On("Update", ctx, vault).Return(nil).Once()

		updated, err := deps.useCase.Deactivate(ctx, vault.ID, reqCtx)
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.StatusInactive, updated.Status)
	})

	t.Run("Success_Archive", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()
		deps.vaultRepo.On("Update", ctx, vault).Return(nil).Once()

		updated, err := deps.useCase.Archive(ctx, vault.ID, reqCtx)
		require.NoError(t, err)
		assert.Equal(t, vaultDomain.StatusArchived, updated.Status)
	})

	t.Run("Error_ActivateAlreadyActive", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.Activate(ctx, vault.ID, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidStatusTransition)
	})

	t.Run("Error_ArchivedIsTerminal", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()
		vault.Status = vaultDomain.StatusArchived

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.Activate(ctx, vault.ID, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidStatusTransition)
	})
}

func TestVaultUseCase_RotateKey(t *testing.T) {
	ctx := context.Background()
	reqCtx := auditDomain.RequestContext{UserID: "admin"}

	t.Run("Success_RetiresCurrentAndActivatesNext", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()

		currentKey := &vaultDomain.VaultKey{
			ID:           uuid.Must(uuid.NewV7()),
			VaultID:      vault.ID,
			KeyVersion:   1,
			KeyReference: vaultDomain.NewKeyReference(vault.ID, 1),
			Status:       vaultDomain.KeyStatusActive,
		}

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.vaultRepo.On("Get", mock.Anything, vault.ID).Return(vault, nil).Once()
		deps.keyRepo.On("GetActive", mock.Anything, vault.ID).Return(currentKey, nil).Once()
		deps.keyMaterial.On("Generate", mock.Anything, vaultDomain.NewKeyReference(vault.ID, 2)).
			Return(nil, "new-key-hash", nil).Once()
		deps.keyRepo.On("Retire", mock.Anything, currentKey.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		deps.keyRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *vaultDomain.VaultKey) bool {
			return k.KeyVersion == 2 && k.Status == vaultDomain.KeyStatusActive
		})).Return(nil).Once()
		deps.vaultRepo.On("Update", mock.Anything, vault).Return(nil).Once()

		newKey, err := deps.useCase.RotateKey(ctx, vault.ID, reqCtx)

		require.NoError(t, err)
		assert.Equal(t, uint(2), newKey.KeyVersion)
		assert.Equal(t, vaultDomain.NewKeyReference(vault.ID, 2), vault.EncryptionKeyReference)
		deps.keyRepo.AssertExpectations(t)
	})

	t.Run("Error_InactiveVault", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()
		vault.Status = vaultDomain.StatusInactive

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.vaultRepo.On("Get", mock.Anything, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.RotateKey(ctx, vault.ID, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrVaultNotActive)
	})

	t.Run("Error_NoActiveKey", func(t *testing.T) {
		deps := newVaultTestDeps()
		deps.expectAudit()
		vault := activeVault()

		deps.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
		deps.vaultRepo.On("Get", mock.Anything, vault.ID).Return(vault, nil).Once()
		deps.keyRepo.On("GetActive", mock.Anything, vault.ID).
			Return(nil, vaultDomain.ErrNoActiveKey).Once()

		_, err := deps.useCase.RotateKey(ctx, vault.ID, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrNoActiveKey)
	})
}

func TestVaultUseCase_GetStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ComputesUtilization", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()
		vault.CurrentTokenCount = 250
		vault.MaxTokens = 1000

		activeKey := &vaultDomain.VaultKey{KeyVersion: 3, Status: vaultDomain.KeyStatusActive}

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()
		deps.keyRepo.On("GetActive", ctx, vault.ID).Return(activeKey, nil).Once()

		stats, err := deps.useCase.GetStatistics(ctx, vault.ID)

		require.NoError(t, err)
		assert.Equal(t, 25.0, stats.UtilizationPct)
		assert.Equal(t, uint(3), stats.ActiveKeyVersion)
		assert.False(t, stats.NeedsKeyRotation)
	})

	t.Run("Success_MissingActiveKeyLeavesVersionZero", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()
		deps.keyRepo.On("GetActive", ctx, vault.ID).Return(nil, vaultDomain.ErrNoActiveKey).Once()

		stats, err := deps.useCase.GetStatistics(ctx, vault.ID)
		require.NoError(t, err)
		assert.Equal(t, uint(0), stats.ActiveKeyVersion)
	})
}

func TestVaultUseCase_ValidateForOperation(t *testing.T) {
	ctx := context.Background()
	reqCtx := auditDomain.RequestContext{UserID: "user-1", IPAddress: "10.0.0.1"}

	t.Run("Success_AllowedOperation", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		got, err := deps.useCase.ValidateForOperation(ctx, vault.ID, vaultDomain.OperationTokenize, reqCtx)
		require.NoError(t, err)
		assert.Equal(t, vault.ID, got.ID)
	})

	t.Run("Error_InactiveVaultHiddenAsNotFound", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()
		vault.Status = vaultDomain.StatusInactive

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.ValidateForOperation(ctx, vault.ID, vaultDomain.OperationTokenize, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrVaultNotFound)
	})

	t.Run("Error_OperationNotAllowed", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.ValidateForOperation(ctx, vault.ID, vaultDomain.OperationExport, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrOperationNotAllowed)
	})

	t.Run("Error_IPRestricted", func(t *testing.T) {
		deps := newVaultTestDeps()
		vault := activeVault()
		vault.AccessRestrictions = &vaultDomain.AccessRestrictions{AllowedIPs: []string{"192.168.1.1"}}

		deps.vaultRepo.On("Get", ctx, vault.ID).Return(vault, nil).Once()

		_, err := deps.useCase.ValidateForOperation(ctx, vault.ID, vaultDomain.OperationTokenize, reqCtx)
		assert.ErrorIs(t, err, vaultDomain.ErrAccessRestricted)
	})
}

func TestVaultUseCase_ListNeedingRotation(t *testing.T) {
	ctx := context.Background()

	deps := newVaultTestDeps()
	due := activeVault()

	deps.vaultRepo.On("ListNeedingRotation", ctx, mock.AnythingOfType("time.Time")).
		Return([]*vaultDomain.Vault{due}, nil).Once()

	vaults, err := deps.useCase.ListNeedingRotation(ctx)
	require.NoError(t, err)
	assert.Len(t, vaults, 1)
}
