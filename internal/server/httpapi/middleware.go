package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"assistant-service/internal/common"
)

const (
	claimsKey = "claims"
	tokenKey  = "accessToken"
)

// authRequired validates the bearer token and stores its claims in the
// request context.
func (h *handlers) authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header format must be Bearer {token}"})
		return
	}

	claims, err := h.users.VerifyAccessToken(c.Request.Context(), parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorCode(err)})
		return
	}

	c.Set(claimsKey, claims)
	c.Set(tokenKey, parts[1])
	c.Next()
}

// tokenErrorCode maps token errors to the wire-level code.
func tokenErrorCode(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, common.ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, common.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	default:
		return "internal_error"
	}
}
