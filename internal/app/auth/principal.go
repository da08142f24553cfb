// Package auth carries the authenticated principal that the auth middleware
// attaches to every request.
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/hivenest/communio/internal/app/models"
)

// Principal is the authenticated caller: an identity plus an owner or
// resident role.
type Principal struct {
	UserID int64
	Role   models.Role
}

// IsOwner reports whether the principal carries the owner role.
func (p Principal) IsOwner() bool {
	return p.Role == models.RoleOwner
}

// FromContext extracts the principal set by the auth middleware. The second
// return value is false when the request was not authenticated.
func FromContext(c *gin.Context) (Principal, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return Principal{}, false
	}
	role, ok := c.Get("role")
	if !ok {
		return Principal{}, false
	}

	id, ok := userID.(int64)
	if !ok {
		return Principal{}, false
	}
	roleStr, ok := role.(string)
	if !ok {
		return Principal{}, false
	}

	return Principal{UserID: id, Role: models.Role(roleStr)}, true
}
