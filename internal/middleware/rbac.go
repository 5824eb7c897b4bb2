package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

// RequireRoles lets the request through only when the caller holds one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		// faculty accounts act only through their linked faculty record
		if claims.Role == models.RoleFaculty && claims.FacultyID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a faculty"))
			return
		}
		c.Next()
	}
}

// AdminOnly is shorthand for RequireRoles(models.RoleAdmin).
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}
