// Package dto provides data transfer objects for security alert HTTP handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/tokenvault/internal/validation"
)

// AcknowledgeAlertRequest contains the parameters for acknowledging an alert.
type AcknowledgeAlertRequest struct {
	By string `json:"by"`
}

// Validate checks if the acknowledge request is valid.
func (r *AcknowledgeAlertRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.By,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// ResolveAlertRequest contains the parameters for resolving an alert or
// marking it as a false positive.
type ResolveAlertRequest struct {
	By   string `json:"by"`
	Note string `json:"note,omitempty"`
}

// Validate checks if the resolve request is valid.
func (r *ResolveAlertRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.By,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Note,
			validation.Length(0, 2000),
		),
	)
}

// BulkAlertActionRequest contains a batch of alert IDs for a bulk transition.
type BulkAlertActionRequest struct {
	AlertIDs []string `json:"alert_ids"`
	By       string   `json:"by"`
	Note     string   `json:"note,omitempty"`
}

// Validate checks if the bulk action request is valid.
func (r *BulkAlertActionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AlertIDs,
			validation.Required,
			validation.Length(1, 100),
		),
		validation.Field(&r.By,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}
