package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apikeyDomain "github.com/allisson/tokenvault/internal/apikey/domain"
	apikeyUseCase "github.com/allisson/tokenvault/internal/apikey/usecase"
	apperrors "github.com/allisson/tokenvault/internal/errors"
	"github.com/allisson/tokenvault/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via Bearer API key in the
// Authorization header and stores the key in the request context for
// downstream authorization checks and audit attribution.
//
// Authorization header format: "Bearer <key>" (case-insensitive "bearer").
func AuthenticationMiddleware(
	keyUseCase apikeyUseCase.APIKeyUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainKey := authHeader[len(bearerPrefix):]
		if plainKey == "" {
			logger.Debug("authentication failed: empty bearer key")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		key, err := keyUseCase.Authenticate(c.Request.Context(), plainKey)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithAPIKey(c.Request.Context(), key)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("key_id", key.ID.String()),
			slog.String("key_name", key.Name),
		)

		c.Next()
	}
}

// AuthorizationMiddleware checks that the authenticated API key's role grants
// the required capability. Must run after AuthenticationMiddleware.
func AuthorizationMiddleware(
	capability apikeyDomain.Capability,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := GetAPIKey(c.Request.Context())
		if !ok || key == nil {
			logger.Debug("authorization failed: no authenticated api key in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !key.Can(capability) {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("key_id", key.ID.String()),
				slog.String("role", string(key.Role)),
				slog.String("capability", string(capability)),
			)
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
