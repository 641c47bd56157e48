package http

import (
	"bytes"
	"context"
	"encoding/json"
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

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
)

// MockComplianceUseCase is a mock implementation of ComplianceUseCase.
type MockComplianceUseCase struct {
	mock.Mock
}

func (m *MockComplianceUseCase) GenerateReport(ctx context.Context, input *complianceUseCase.GenerateReportInput) (*complianceDomain.ComplianceReport, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complianceDomain.ComplianceReport), args.Error(1)
}

func (m *MockComplianceUseCase) GenerateData(ctx context.Context, input *complianceUseCase.GenerateReportInput) (*complianceUseCase.ComplianceData, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complianceUseCase.ComplianceData), args.Error(1)
}

func (m *MockComplianceUseCase) ProcessReport(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *MockComplianceUseCase) Get(ctx context.Context, reportID uuid.UUID) (*complianceDomain.ComplianceReport, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*complianceDomain.ComplianceReport), args.Error(1)
}

func (m *MockComplianceUseCase) List(ctx context.Context, offset, limit int) ([]*complianceDomain.ComplianceReport, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*complianceDomain.ComplianceReport), args.Error(1)
}

func setupTestReportHandler(t *testing.T) (*ReportHandler, *MockComplianceUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockUseCase := &MockComplianceUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewReportHandler(mockUseCase, logger)
	return handler, mockUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reqBody io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func buildReport(ruleset complianceDomain.Ruleset) *complianceDomain.ComplianceReport {
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return complianceDomain.NewComplianceReport(ruleset, nil, periodStart, periodEnd, "auditor-1")
}

func TestReportHandler_GenerateHandler(t *testing.T) {
	t.Run("Success_ReportAccepted", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		report := buildReport(complianceDomain.RulesetPCIDSS)
		request := dtoGenerateRequest("pci_dss", nil)

		mockUseCase.On("GenerateReport", mock.Anything, mock.MatchedBy(func(input *complianceUseCase.GenerateReportInput) bool {
			return input.Ruleset == complianceDomain.RulesetPCIDSS &&
				input.VaultID == nil &&
				input.RequestedBy == "auditor-1"
		})).Return(report, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, report.ID.String(), response["id"])
		assert.Equal(t, "pci_dss", response["ruleset"])
		assert.Equal(t, "pending", response["status"])
		assert.Equal(t, "auditor-1", response["requested_by"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_ScopedToVault", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		vaultID := uuid.Must(uuid.NewV7())
		vaultIDStr := vaultID.String()
		report := buildReport(complianceDomain.RulesetGDPR)
		report.VaultID = &vaultID
		request := dtoGenerateRequest("gdpr", &vaultIDStr)

		mockUseCase.On("GenerateReport", mock.Anything, mock.MatchedBy(func(input *complianceUseCase.GenerateReportInput) bool {
			return input.Ruleset == complianceDomain.RulesetGDPR &&
				input.VaultID != nil && *input.VaultID == vaultID
		})).Return(report, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_ValidationFailed_UnknownRuleset", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		request := dtoGenerateRequest("hipaa", nil)
		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_ValidationFailed_MissingRequestedBy", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		request := dtoGenerateRequest("pci_dss", nil)
		request["requested_by"] = ""
		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidVaultID", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		badID := "not-a-uuid"
		request := dtoGenerateRequest("pci_dss", &badID)
		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_InvalidPeriod", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		request := dtoGenerateRequest("pci_dss", nil)
		mockUseCase.On("GenerateReport", mock.Anything, mock.Anything).
			Return(nil, complianceDomain.ErrInvalidPeriod).Once()

		c, w := createTestContext(http.MethodPost, "/v1/compliance/reports", request)
		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "invalid_input", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestReportHandler_DataHandler(t *testing.T) {
	t.Run("Success_WindowScored", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		data := &complianceUseCase.ComplianceData{
			Ruleset:     complianceDomain.RulesetPCIDSS,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			RecordCount: 420,
			Result: &complianceDomain.ScoringResult{
				Score: 62,
				Band:  complianceDomain.BandHigh,
				Violations: []complianceDomain.Violation{
					{
						RequirementID: "10.2.4",
						Description:   "failed detokenize operations above threshold",
						Severity:      "high",
						Count:         17,
						Penalty:       20,
					},
				},
				Recommendations: []string{"review failed detokenize sources"},
			},
		}

		mockUseCase.On("GenerateData", mock.Anything, mock.MatchedBy(func(input *complianceUseCase.GenerateReportInput) bool {
			return input.Ruleset == complianceDomain.RulesetPCIDSS
		})).Return(data, nil).Once()

		request := dtoGenerateRequest("pci_dss", nil)
		c, w := createTestContext(http.MethodPost, "/v1/compliance/data", request)
		handler.DataHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "pci_dss", response["ruleset"])
		assert.Equal(t, float64(420), response["record_count"])
		assert.Equal(t, float64(62), response["score"])
		assert.Equal(t, "HIGH", response["risk_band"])

		violations := response["violations"].([]interface{})
		assert.Len(t, violations, 1)
		violation := violations[0].(map[string]interface{})
		assert.Equal(t, "10.2.4", violation["requirement_id"])
		assert.Equal(t, float64(17), violation["count"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidPeriod", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		mockUseCase.On("GenerateData", mock.Anything, mock.Anything).
			Return(nil, complianceDomain.ErrInvalidPeriod).Once()

		request := dtoGenerateRequest("sox", nil)
		c, w := createTestContext(http.MethodPost, "/v1/compliance/data", request)
		handler.DataHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestReportHandler_GetHandler(t *testing.T) {
	t.Run("Success_CompletedReport", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		report := buildReport(complianceDomain.RulesetPCIDSS)
		report.Start(time.Now().UTC())
		result := &complianceDomain.ScoringResult{
			Score:           91,
			Band:            complianceDomain.BandLow,
			Recommendations: []string{"maintain current controls"},
		}
		report.Complete(result, 1200, "reports/2026/01/report.json", "sha256-abc", time.Now().UTC())

		mockUseCase.On("Get", mock.Anything, report.ID).Return(report, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports/"+report.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: report.ID.String()}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "completed", response["status"])
		assert.Equal(t, float64(91), response["score"])
		assert.Equal(t, "LOW", response["risk_band"])
		assert.Equal(t, float64(1200), response["record_count"])
		assert.Equal(t, "reports/2026/01/report.json", response["artifact_path"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidUUID", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports/not-a-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})

	t.Run("Error_ReportNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		reportID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Get", mock.Anything, reportID).
			Return(nil, complianceDomain.ErrReportNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports/"+reportID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: reportID.String()}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "not_found", response["error"])

		mockUseCase.AssertExpectations(t)
	})
}

func TestReportHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		reports := []*complianceDomain.ComplianceReport{
			buildReport(complianceDomain.RulesetPCIDSS),
			buildReport(complianceDomain.RulesetSOX),
		}
		mockUseCase.On("List", mock.Anything, 0, 50).Return(reports, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response["reports"], 2)
		assert.Equal(t, float64(0), response["offset"])
		assert.Equal(t, float64(50), response["limit"])

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestReportHandler(t)

		mockUseCase.On("List", mock.Anything, 10, 5).
			Return([]*complianceDomain.ComplianceReport{}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports?offset=10&limit=5", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, _ := setupTestReportHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/compliance/reports?limit=500", nil)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "bad_request", response["error"])
	})
}

func dtoGenerateRequest(ruleset string, vaultID *string) map[string]interface{} {
	request := map[string]interface{}{
		"ruleset":      ruleset,
		"period_start": "2026-01-01T00:00:00Z",
		"period_end":   "2026-02-01T00:00:00Z",
		"requested_by": "auditor-1",
	}
	if vaultID != nil {
		request["vault_id"] = *vaultID
	}
	return request
}
