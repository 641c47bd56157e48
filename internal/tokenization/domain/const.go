// Package domain defines the token aggregate: one token's lifecycle, encrypted
// payload, and integrity bindings.
package domain

// TokenType defines how a token value is generated.
type TokenType string

const (
	// TypeRandom is a cryptographically secure random alphanumeric value.
	TypeRandom TokenType = "random"

	// TypeFormatPreserving mirrors the plaintext's character-class shape
	// (digit/letter/case/literal). One-way substitution, not reversible FPE.
	TypeFormatPreserving TokenType = "format_preserving"

	// TypeSequential is a monotonically increasing counter value. Not random;
	// intended for low-sensitivity internal use only.
	TypeSequential TokenType = "sequential"
)

// Validate checks if the token type is valid.
func (t TokenType) Validate() error {
	switch t {
	case TypeRandom, TypeFormatPreserving, TypeSequential:
		return nil
	default:
		return ErrInvalidTokenType
	}
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	return string(t)
}

// Status represents the token lifecycle status. Transitions are one-directional:
// active is the only non-terminal state.
type Status string

const (
	StatusActive      Status = "active"
	StatusRevoked     Status = "revoked"
	StatusExpired     Status = "expired"
	StatusCompromised Status = "compromised"
)

// Token value constraints.
const (
	// MinTokenLength is the minimum allowed token value length.
	MinTokenLength = 8

	// MaxTokenLength is the maximum allowed token value length.
	MaxTokenLength = 128

	// DefaultRandomTokenLength is the generated length for random tokens.
	DefaultRandomTokenLength = 32

	// MaxPlaintextSize bounds tokenization input (64 KB) to keep encryption
	// cost predictable and resist oversized-input abuse.
	MaxPlaintextSize = 65536
)
