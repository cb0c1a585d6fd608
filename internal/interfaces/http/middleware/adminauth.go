package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"keygate/internal/infrastructure/auth"
	"keygate/internal/shared/constants"
	"keygate/internal/shared/utils"
)

// AdminAuthMiddleware guards the admin API with bearer tokens from the
// admin token service.
type AdminAuthMiddleware struct {
	tokens *auth.AdminTokenService
}

func NewAdminAuthMiddleware(tokens *auth.AdminTokenService) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{tokens: tokens}
}

// RequireAdmin aborts with 401 unless the request carries a valid admin
// token. The verified subject is stored on the context for audit logs.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if header == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "authorization header is required")
			c.Abort()
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "bearer token is required")
			c.Abort()
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdmin, claims.Subject)
		c.Next()
	}
}
