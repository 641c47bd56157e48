// Package http provides HTTP middleware and utilities for API key authentication.
package http

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	auditDomain "github.com/allisson/tokenvault/internal/audit/domain"
)

// apiKeyContextKey is a context key type for storing authenticated API keys.
type apiKeyContextKey struct{}

// WithAPIKey stores an authenticated API key in the context.
// This is typically called by the authentication middleware after successful verification.
func WithAPIKey(ctx context.Context, key *apikeyDomain.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyContextKey{}, key)
}

// GetAPIKey retrieves an authenticated API key from the context.
// Returns (key, true) if a key is present, or (nil, false) if no key was set.
func GetAPIKey(ctx context.Context) (*apikeyDomain.APIKey, bool) {
	key, ok := ctx.Value(apiKeyContextKey{}).(*apikeyDomain.APIKey)
	return key, ok
}

// BuildRequestContext assembles the audit request identity from the gin
// request: the authenticated key, client network details, and the optional
// caller-supplied operator identity headers.
func BuildRequestContext(c *gin.Context) auditDomain.RequestContext {
	reqCtx := auditDomain.RequestContext{
		UserID:    c.GetHeader("X-User-Id"),
		SessionID: c.GetHeader("X-Session-Id"),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestid.Get(c),
	}

	if key, ok := GetAPIKey(c.Request.Context()); ok {
		reqCtx.APIKeyID = key.ID.String()
		if reqCtx.UserID == "" {
			reqCtx.UserID = key.Name
		}
	}

	return reqCtx
}
