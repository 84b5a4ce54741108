package identity

import "github.com/gin-gonic/gin"

// Module implements the app.Module interface for accounts and sessions.
type Module struct {
	handler *Handler
}

// NewModule creates an identity Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("identity.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the anonymous auth endpoints and the authenticated
// profile endpoint.
func (m *Module) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", m.handler.Login)
	public.POST("/auth/register", m.handler.Register)
	public.POST("/auth/resetpassword", m.handler.ResetPassword)
	public.POST("/auth/updatepassword", m.handler.UpdatePassword)

	protected.GET("/me", m.handler.Me)
}
