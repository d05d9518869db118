package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	appctx "coldledger/internal/core/context"
)

// TokenValidator verifies a facility bearer token and returns the
// caller identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Identity, error)
}

// Auth middleware validates bearer tokens and populates the caller
// identity. Every protected route runs behind it; the facility id in
// the token scopes all downstream reads and writes.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		ident, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithIdentity(c.Request.Context(), ident)
		c.Request = c.Request.WithContext(ctx)

		c.Set("facility_id", ident.FacilityID.String())
		c.Set("operator", ident.Subject)

		c.Next()
	}
}

// RequireAdmin rejects callers without administrative rights.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appctx.IsAdmin(c.Request.Context()) {
			_ = c.Error(apperror.NewForbidden("administrator rights required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
