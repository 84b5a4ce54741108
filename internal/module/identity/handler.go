package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/glowingstore/internal/auth"
	"github.com/simp-lee/glowingstore/internal/pkg"
)

// Handler handles REST API requests for accounts and sessions.
type Handler struct {
	svc Service
}

// NewHandler creates an identity Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, resp)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.Register(c.Request.Context(), req); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// ResetPassword handles POST /api/auth/resetpassword.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.ResetPassword(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, resp)
}

// UpdatePassword handles POST /api/auth/updatepassword.
func (h *Handler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.UpdatePassword(c.Request.Context(), req); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

// Me handles GET /api/me, returning the profile behind the bearer token.
func (h *Handler) Me(c *gin.Context) {
	authCtx, ok := auth.FromGin(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.svc.Me(c.Request.Context(), authCtx.UserName)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, user)
}
