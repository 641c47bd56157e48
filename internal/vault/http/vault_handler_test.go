package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/tokenvault/internal/vault/domain"
	"github.com/allisson/tokenvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/tokenvault/internal/vault/usecase"
)

// MockVaultUseCase is a mock implementation of VaultUseCase for testing.
type MockVaultUseCase struct {
	mock.Mock
}

func (m *MockVaultUseCase) Create(
	ctx context.Context,
	input *vaultUseCase.CreateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, input, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) Update(
	ctx context.Context,
	vaultID uuid.UUID,
	input *vaultUseCase.UpdateVaultInput,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, input, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) Get(ctx context.Context, vaultID uuid.UUID) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Vault, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) Activate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) Deactivate(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) Archive(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) RotateKey(
	ctx context.Context,
	vaultID uuid.UUID,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.VaultKey, error) {
	args := m.Called(ctx, vaultID, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultKey), args.Error(1)
}

func (m *MockVaultUseCase) GetStatistics(ctx context.Context, vaultID uuid.UUID) (*vaultUseCase.Statistics, error) {
	args := m.Called(ctx, vaultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultUseCase.Statistics), args.Error(1)
}

func (m *MockVaultUseCase) ValidateForOperation(
	ctx context.Context,
	vaultID uuid.UUID,
	op vaultDomain.Operation,
	reqCtx auditDomain.RequestContext,
) (*vaultDomain.Vault, error) {
	args := m.Called(ctx, vaultID, op, reqCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Vault), args.Error(1)
}

func (m *MockVaultUseCase) ListNeedingRotation(ctx context.Context) ([]*vaultDomain.Vault, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Vault), args.Error(1)
}

// setupTestVaultHandler creates a test handler with mocked dependencies.
func setupTestVaultHandler(t *testing.T) (*VaultHandler, *MockVaultUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockVaultUseCase := &MockVaultUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewVaultHandler(mockVaultUseCase, logger)

	return handler, mockVaultUseCase
}

// createTestContext creates a test Gin context with the given request.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// buildVault creates a domain vault for test responses.
func buildVault(name string) *vaultDomain.Vault {
	now := time.Now().UTC()
	return &vaultDomain.Vault{
		ID:                      uuid.Must(uuid.NewV7()),
		Name:                    name,
		Description:             "cardholder data",
		DataType:                vaultDomain.DataTypeCard,
		Status:                  vaultDomain.StatusActive,
		EncryptionAlgorithm:     cryptoDomain.AESGCM,
		MaxTokens:               1000,
		CurrentTokenCount:       10,
		AllowedOperations:       []vaultDomain.Operation{vaultDomain.OperationTokenize, vaultDomain.OperationDetokenize},
		RetentionDays:           30,
		KeyRotationIntervalDays: 90,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func TestVaultHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		request := dto.CreateVaultRequest{
			Name:              "payments",
			Description:       "cardholder data",
			DataType:          "card",
			AllowedOperations: []string{"tokenize", "detokenize"},
			MaxTokens:         1000,
			RetentionDays:     30,
		}

		expectedVault := buildVault("payments")

		mockUseCase.On("Create", mock.Anything, request.ToInput(), mock.Anything).
			Return(expectedVault, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults", request)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.VaultResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, expectedVault.ID, response.ID)
		assert.Equal(t, "payments", response.Name)
		assert.Equal(t, "card", response.DataType)
		assert.Equal(t, "active", response.Status)
		assert.Equal(t, int64(1000), response.MaxTokens)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/vaults", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_ValidationFailed_MissingName", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		request := dto.CreateVaultRequest{
			Name:      "",
			DataType:  "card",
			MaxTokens: 1000,
		}

		c, w := createTestContext(http.MethodPost, "/v1/vaults", request)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_ValidationFailed_UnknownDataType", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		request := dto.CreateVaultRequest{
			Name:      "payments",
			DataType:  "passport",
			MaxTokens: 1000,
		}

		c, w := createTestContext(http.MethodPost, "/v1/vaults", request)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_NameTaken", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		request := dto.CreateVaultRequest{
			Name:      "payments",
			DataType:  "card",
			MaxTokens: 1000,
		}

		mockUseCase.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, vaultDomain.ErrVaultNameTaken).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults", request)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "conflict", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestVaultHandler_GetHandler(t *testing.T) {
	t.Run("Success_ValidUUID", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		expectedVault := buildVault("payments")
		expectedVault.AccessRestrictions = &vaultDomain.AccessRestrictions{
			AllowedIPs:       []string{"10.0.0.1"},
			AllowedHourStart: 8,
			AllowedHourEnd:   18,
		}

		mockUseCase.On("Get", mock.Anything, expectedVault.ID).
			Return(expectedVault, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults/"+expectedVault.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: expectedVault.ID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VaultResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, expectedVault.ID, response.ID)
		assert.Equal(t, []string{"tokenize", "detokenize"}, response.AllowedOperations)
		assert.NotNil(t, response.AccessRestrictions)
		assert.Equal(t, []string{"10.0.0.1"}, response.AccessRestrictions.AllowedIPs)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/vaults/invalid-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "invalid-uuid"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_VaultNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Get", mock.Anything, vaultID).
			Return(nil, vaultDomain.ErrVaultNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults/"+vaultID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "not_found", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestVaultHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaults := []*vaultDomain.Vault{buildVault("payments"), buildVault("payroll")}

		mockUseCase.On("List", mock.Anything, 0, 50).
			Return(vaults, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListVaultsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Vaults, 2)
		assert.Equal(t, 0, response.Offset)
		assert.Equal(t, 50, response.Limit)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ExplicitPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		mockUseCase.On("List", mock.Anything, 10, 5).
			Return([]*vaultDomain.Vault{}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults?offset=10&limit=5", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListVaultsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Empty(t, response.Vaults)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/vaults?limit=500", nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})
}

func TestVaultHandler_UpdateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		description := "updated description"
		maxTokens := int64(2000)
		request := dto.UpdateVaultRequest{
			Description: &description,
			MaxTokens:   &maxTokens,
		}

		updatedVault := buildVault("payments")
		updatedVault.Description = description
		updatedVault.MaxTokens = maxTokens

		mockUseCase.On("Update", mock.Anything, updatedVault.ID, request.ToInput(), mock.Anything).
			Return(updatedVault, nil).
			Once()

		c, w := createTestContext(http.MethodPatch, "/v1/vaults/"+updatedVault.ID.String(), request)
		c.Params = gin.Params{{Key: "id", Value: updatedVault.ID.String()}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VaultResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "updated description", response.Description)
		assert.Equal(t, int64(2000), response.MaxTokens)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_ValidationFailed_ZeroMaxTokens", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		maxTokens := int64(0)
		request := dto.UpdateVaultRequest{MaxTokens: &maxTokens}

		vaultID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodPatch, "/v1/vaults/"+vaultID.String(), request)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_VaultNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		description := "updated description"
		request := dto.UpdateVaultRequest{Description: &description}
		vaultID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Update", mock.Anything, vaultID, mock.Anything, mock.Anything).
			Return(nil, vaultDomain.ErrVaultNotFound).
			Once()

		c, w := createTestContext(http.MethodPatch, "/v1/vaults/"+vaultID.String(), request)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		mockUseCase.AssertExpectations(t)
	})
}

func TestVaultHandler_StatusTransitions(t *testing.T) {
	t.Run("Success_Activate", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vault := buildVault("payments")

		mockUseCase.On("Activate", mock.Anything, vault.ID, mock.Anything).
			Return(vault, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults/"+vault.ID.String()+"/activate", nil)
		c.Params = gin.Params{{Key: "id", Value: vault.ID.String()}}

		handler.ActivateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VaultResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "active", response.Status)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_Deactivate", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vault := buildVault("payments")
		vault.Status = vaultDomain.StatusInactive

		mockUseCase.On("Deactivate", mock.Anything, vault.ID, mock.Anything).
			Return(vault, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults/"+vault.ID.String()+"/deactivate", nil)
		c.Params = gin.Params{{Key: "id", Value: vault.ID.String()}}

		handler.DeactivateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VaultResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "inactive", response.Status)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_Archive_InvalidTransition", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Archive", mock.Anything, vaultID, mock.Anything).
			Return(nil, vaultDomain.ErrInvalidStatusTransition).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults/"+vaultID.String()+"/archive", nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.ArchiveHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		handler, _ := setupTestVaultHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/vaults/invalid-uuid/activate", nil)
		c.Params = gin.Params{{Key: "id", Value: "invalid-uuid"}}

		handler.ActivateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVaultHandler_RotateKeyHandler(t *testing.T) {
	t.Run("Success_ValidUUID", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()
		rotatedKey := &vaultDomain.VaultKey{
			ID:          uuid.Must(uuid.NewV7()),
			VaultID:     vaultID,
			KeyVersion:  2,
			Status:      vaultDomain.KeyStatusActive,
			ActivatedAt: now,
		}

		mockUseCase.On("RotateKey", mock.Anything, vaultID, mock.Anything).
			Return(rotatedKey, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults/"+vaultID.String()+"/rotate-key", nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.RotateKeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, vaultID, response.VaultID)
		assert.Equal(t, uint(2), response.KeyVersion)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_VaultNotActive", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())

		mockUseCase.On("RotateKey", mock.Anything, vaultID, mock.Anything).
			Return(nil, vaultDomain.ErrVaultNotActive).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/vaults/"+vaultID.String()+"/rotate-key", nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "forbidden", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestVaultHandler_StatisticsHandler(t *testing.T) {
	t.Run("Success_ValidUUID", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())
		stats := &vaultUseCase.Statistics{
			VaultID:           vaultID,
			Name:              "payments",
			Status:            vaultDomain.StatusActive,
			DataType:          vaultDomain.DataTypeCard,
			MaxTokens:         1000,
			CurrentTokenCount: 250,
			UtilizationPct:    25.0,
			ActiveKeyVersion:  3,
			NeedsKeyRotation:  true,
		}

		mockUseCase.On("GetStatistics", mock.Anything, vaultID).
			Return(stats, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults/"+vaultID.String()+"/stats", nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.StatisticsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.StatisticsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, vaultID, response.VaultID)
		assert.Equal(t, int64(250), response.CurrentTokenCount)
		assert.Equal(t, 25.0, response.UtilizationPct)
		assert.Equal(t, uint(3), response.ActiveKeyVersion)
		assert.True(t, response.NeedsKeyRotation)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_RepositoryError", func(t *testing.T) {
		handler, mockUseCase := setupTestVaultHandler(t)

		vaultID := uuid.Must(uuid.NewV7())

		mockUseCase.On("GetStatistics", mock.Anything, vaultID).
			Return(nil, errors.New("database connection failed")).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/vaults/"+vaultID.String()+"/stats", nil)
		c.Params = gin.Params{{Key: "id", Value: vaultID.String()}}

		handler.StatisticsHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "internal_error", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}
