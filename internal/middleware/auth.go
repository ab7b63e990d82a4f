// Package middleware holds the gin middleware shared by every route group:
// bearer authentication, access logging, request statistics and rate limiting.
package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

const claimsKey = "auth.claims"

// TokenValidator is satisfied by auth.TokenService.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the claims on the context.
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.WriteError(c, auth.ErrMissingToken)
			return
		}
		claims, err := v.ValidateToken(token)
		if err != nil {
			response.WriteError(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through when the authenticated role is one of roles.
// It must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.WriteError(c, auth.ErrMissingToken)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			response.WriteError(c, auth.ErrForbidden)
			return
		}
		c.Next()
	}
}

// Claims returns the claims stored by RequireAuth.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
