package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/util"
)

const identityContextKey = "identity"

// Middleware validates the Authorization bearer token and stores the caller
// identity on the request context
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondWithAPIError(c, apperrors.Unauthorized("no token provided"))
			c.Abort()
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			util.RespondWithAPIError(c, apperrors.Unauthorized("malformed authorization header"))
			c.Abort()
			return
		}

		identity, err := s.ValidateToken(tokenString)
		if err != nil {
			util.RespondWithAPIError(c, apperrors.Unauthorized(err.Error()))
			c.Abort()
			return
		}

		c.Set(identityContextKey, *identity)
		c.Next()
	}
}

// IdentityFromContext returns the authenticated caller set by Middleware
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}
