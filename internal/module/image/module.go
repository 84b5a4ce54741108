package image

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/middleware"
)

// Module implements the app.Module interface for the image resource.
type Module struct {
	handler *Handler
}

// NewModule creates an image Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("image.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers image API routes. Reads require an active user;
// uploads and deletes require an administrator or power user.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	_ = public

	protected.GET("/images", middleware.UserActive(), m.handler.GetList)
	protected.GET("/images/:id", middleware.UserActive(), m.handler.Get)
	protected.GET("/images/:id/content", middleware.UserActive(), m.handler.Read)
	protected.POST("/images", middleware.Administrator(), m.handler.Save)
	protected.DELETE("/images/:id", middleware.Administrator(), m.handler.Delete)
}
