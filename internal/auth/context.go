// Package auth carries token issuance and the authenticated request context.
// The context is an explicit struct built once at the authentication boundary
// and passed along; there is no framework-managed principal.
package auth

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "auth_context"

// Context holds the verified identity of the current request.
type Context struct {
	UserID        uuid.UUID
	UserName      string
	GivenName     string
	FamilyName    string
	Email         string
	SecurityStamp string
	Roles         []string
}

// HasAnyRole reports whether the identity holds at least one of the named
// roles.
func (c *Context) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if slices.Contains(c.Roles, name) {
			return true
		}
	}
	return false
}

// Attach stores the authenticated context on the gin context.
func Attach(c *gin.Context, authCtx *Context) {
	c.Set(contextKey, authCtx)
}

// FromGin retrieves the authenticated context set by the authentication
// middleware.
func FromGin(c *gin.Context) (*Context, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	authCtx, ok := v.(*Context)
	return authCtx, ok
}
