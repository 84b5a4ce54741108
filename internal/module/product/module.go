package product

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/middleware"
)

// Module implements the app.Module interface for the product resource.
type Module struct {
	handler *Handler
}

// NewModule creates a product Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("product.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers product API routes. Reads require an active user;
// mutations require an administrator or power user.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	_ = public

	protected.GET("/products", middleware.UserActive(), m.handler.GetList)
	protected.GET("/products/:id", middleware.UserActive(), m.handler.Get)
	protected.POST("/products", middleware.Administrator(), m.handler.Create)
	protected.PUT("/products/:id", middleware.Administrator(), m.handler.Update)
	protected.DELETE("/products/:id", middleware.Administrator(), m.handler.Delete)
}
