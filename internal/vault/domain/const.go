// Package domain defines the vault aggregate: a named, policy-scoped collection
// of tokens sharing an encryption key lineage and operational constraints.
package domain

// DataType classifies the sensitive data a vault stores.
type DataType string

const (
	DataTypeCard        DataType = "card"
	DataTypeSSN         DataType = "ssn"
	DataTypeBankAccount DataType = "bank_account"
	DataTypeCustom      DataType = "custom"
)

// Validate checks if the data type is valid.
func (d DataType) Validate() error {
	switch d {
	case DataTypeCard, DataTypeSSN, DataTypeBankAccount, DataTypeCustom:
		return nil
	default:
		return ErrInvalidDataType
	}
}

// Status represents the vault lifecycle status.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// Operation names the operations a vault can permit.
type Operation string

const (
	OperationTokenize       Operation = "tokenize"
	OperationDetokenize     Operation = "detokenize"
	OperationBulkTokenize   Operation = "bulk_tokenize"
	OperationBulkDetokenize Operation = "bulk_detokenize"
	OperationSearch         Operation = "search"
	OperationRevoke         Operation = "revoke"
	OperationExport         Operation = "export"
)

// Validate checks if the operation name is known.
func (o Operation) Validate() error {
	switch o {
	case OperationTokenize, OperationDetokenize, OperationBulkTokenize,
		OperationBulkDetokenize, OperationSearch, OperationRevoke, OperationExport:
		return nil
	default:
		return ErrInvalidOperation
	}
}

// KeyStatus represents the lifecycle status of a vault encryption key version.
type KeyStatus string

const (
	KeyStatusActive      KeyStatus = "active"
	KeyStatusRetired     KeyStatus = "retired"
	KeyStatusCompromised KeyStatus = "compromised"
)
