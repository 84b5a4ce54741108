package product

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/pkg"
)

const (
	defaultOrderBy      = "Name, Price"
	defaultItemsPerPage = 50
)

// Handler handles REST API requests for the product resource.
type Handler struct {
	svc Service
}

// NewHandler creates a product Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /api/products/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	product, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, product)
}

// GetList handles GET /api/products. Query parameters: searchText, orderBy,
// pageIndex, itemsPerPage.
func (h *Handler) GetList(c *gin.Context) {
	searchText := c.Query("searchText")
	orderBy := c.DefaultQuery("orderBy", defaultOrderBy)

	pageIndex, err := queryInt(c, "pageIndex", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	itemsPerPage, err := queryInt(c, "itemsPerPage", defaultItemsPerPage)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	// The pipeline divides by itemsPerPage and multiplies it into the
	// offset; both must be sane before it runs.
	if pageIndex < 0 {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "pageIndex must not be negative", nil))
		return
	}
	if itemsPerPage <= 0 {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "itemsPerPage must be greater than 0", nil))
		return
	}

	result, err := h.svc.GetList(c.Request.Context(), searchText, orderBy, pageIndex, itemsPerPage)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Create handles POST /api/products.
func (h *Handler) Create(c *gin.Context) {
	var req SaveProductRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	product, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.CreatedAt(c, "/api/products/"+product.ID.String(), product)
}

// Update handles PUT /api/products/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SaveProductRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	product, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, product)
}

// Delete handles DELETE /api/products/:id.
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

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewAppError(domain.CodeValidation, name+" must be an integer", err)
	}
	return value, nil
}
