// Package dto provides data transfer objects for compliance HTTP handling.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	complianceDomain "github.com/allisson/tokenvault/internal/compliance/domain"
	complianceUseCase "github.com/allisson/tokenvault/internal/compliance/usecase"
	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// GenerateReportRequest contains the parameters for requesting a compliance report.
type GenerateReportRequest struct {
	Ruleset     string    `json:"ruleset"`
	VaultID     *string   `json:"vault_id,omitempty"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	RequestedBy string    `json:"requested_by"`
}

// Validate checks if the generate report request is valid.
func (r *GenerateReportRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ruleset,
			validation.Required,
			customValidation.OneOf("pci_dss", "sox", "gdpr"),
		),
		validation.Field(&r.PeriodStart,
			validation.Required,
		),
		validation.Field(&r.PeriodEnd,
			validation.Required,
		),
		validation.Field(&r.RequestedBy,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *GenerateReportRequest) ToInput() (*complianceUseCase.GenerateReportInput, error) {
	input := &complianceUseCase.GenerateReportInput{
		Ruleset:     complianceDomain.Ruleset(r.Ruleset),
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		RequestedBy: r.RequestedBy,
	}

	if r.VaultID != nil && *r.VaultID != "" {
		vaultID, err := uuid.Parse(*r.VaultID)
		if err != nil {
			return nil, err
		}
		input.VaultID = &vaultID
	}

	return input, nil
}
