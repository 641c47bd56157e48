package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCliRequestContext(t *testing.T) {
	reqCtx := cliRequestContext()

	assert.Equal(t, "cli", reqCtx.UserID)
	assert.Equal(t, "127.0.0.1", reqCtx.IPAddress)
	assert.Equal(t, "tokenvault-cli", reqCtx.UserAgent)
	assert.Empty(t, reqCtx.APIKeyID)
}
