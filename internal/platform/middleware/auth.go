package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/response"
)

const (
	ctxUserID = "user_id"
	ctxRoles  = "user_roles"
	ctxEmail  = "user_email"
)

// AuthMiddleware requires a valid bearer token and stores the caller identity
// on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := jwtManager.Validate(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(c, "token subject is not a user id")
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRoles, claims.RoleSet())
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// RequireRole allows the request through when the caller holds any of roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		held, _ := GetUserRoles(c)
		if !auth.HasAnyRole(held, roles...) {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRoles returns the authenticated user's roles.
func GetUserRoles(c *gin.Context) ([]auth.Role, bool) {
	v, ok := c.Get(ctxRoles)
	if !ok {
		return nil, false
	}
	roles, ok := v.([]auth.Role)
	return roles, ok
}

// GetCaller bundles the identity stored by AuthMiddleware.
func GetCaller(c *gin.Context) (auth.Caller, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return auth.Caller{}, false
	}
	roles, _ := GetUserRoles(c)
	return auth.Caller{ID: id, Roles: roles}, true
}
