package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/utils"
)

// HeaderAuth trusts identity headers set by the authenticating edge proxy.
// The billing service runs behind the accounts gateway, which strips these
// headers from external traffic before forwarding.
type HeaderAuth struct{}

func NewHeaderAuth() *HeaderAuth {
	return &HeaderAuth{}
}

// RequireAuth extracts the user identity from X-User-ID and puts it into
// the gin context under user_id.
func (a *HeaderAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid user identity")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, uint(userID))
		c.Next()
	}
}

// RequireAdmin allows the request through only when the edge proxy marked
// the caller as an administrator.
func (a *HeaderAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != "admin" {
			utils.ErrorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
