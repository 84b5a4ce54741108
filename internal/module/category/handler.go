package category

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/pkg"
)

// Handler handles REST API requests for the category resource.
type Handler struct {
	svc Service
}

// NewHandler creates a category Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /api/categories/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	category, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, category)
}

// GetList handles GET /api/categories.
func (h *Handler) GetList(c *gin.Context) {
	categories, err := h.svc.GetList(c.Request.Context(), c.Query("name"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, categories)
}

// Create handles POST /api/categories.
func (h *Handler) Create(c *gin.Context) {
	var req SaveCategoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	category, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.CreatedAt(c, "/api/categories/"+category.ID.String(), category)
}

// Update handles PUT /api/categories/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SaveCategoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	category, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, category)
}

// Delete handles DELETE /api/categories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.NoContent(c)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.NewAppError(domain.CodeValidation, "invalid id", err)
	}
	return id, nil
}
