package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering business module. The
// public group carries no authentication; the protected group requires a
// verified bearer token over an active account.
type Module interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}
