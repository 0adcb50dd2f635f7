package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobgate/api/internal/authorizer"
	"jobgate/api/internal/models"
)

const identityKey = "identity"

// BearerToken extracts the session token from the Authorization header. An
// absent header is valid anonymous input and yields the empty token.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Authorize runs the authorization pass for every request on the group and
// attaches the resolved identity to the gin context. Failures abort with a
// bare 401; the reason stays in the logs.
func Authorize(auth *authorizer.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Authorize(c.Request.Context(), BearerToken(c))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Authorize.
func CurrentIdentity(c *gin.Context) (authorizer.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return authorizer.Identity{}, false
	}
	identity, ok := val.(authorizer.Identity)
	return identity, ok
}

// RequireRoles gates a route group on the attached identity's role. It must
// run after Authorize.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if _, ok := roleSet[identity.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
