package category

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/middleware"
)

// Module implements the app.Module interface for the category resource.
type Module struct {
	handler *Handler
}

// NewModule creates a category Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("category.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers category API routes. Reads require an active user;
// mutations require an administrator or power user.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	_ = public

	protected.GET("/categories", middleware.UserActive(), m.handler.GetList)
	protected.GET("/categories/:id", middleware.UserActive(), m.handler.Get)
	protected.POST("/categories", middleware.Administrator(), m.handler.Create)
	protected.PUT("/categories/:id", middleware.Administrator(), m.handler.Update)
	protected.DELETE("/categories/:id", middleware.Administrator(), m.handler.Delete)
}
