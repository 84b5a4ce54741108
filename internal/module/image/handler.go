package image

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/pkg"
)

// Handler handles REST API requests for the image resource.
type Handler struct {
	svc Service
}

// NewHandler creates an image Handler with the given service.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /api/images/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	img, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, img)
}

// GetList handles GET /api/images.
func (h *Handler) GetList(c *gin.Context) {
	images, err := h.svc.GetList(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, images)
}

// Read handles GET /api/images/:id/content, streaming the stored bytes with
// the recorded content type.
func (h *Handler) Read(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	content, err := h.svc.Read(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer content.Stream.Close()

	c.DataFromReader(http.StatusOK, -1, content.ContentType, content.Stream, nil)
}

// Save handles POST /api/images: a multipart upload with a "file" part and an
// optional "description" field.
func (h *Handler) Save(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "a file is required", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeClientError, "failed to open uploaded file", err))
		return
	}
	defer file.Close()

	img, err := h.svc.Save(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size, c.PostForm("description"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.CreatedAt(c, "/api/images/"+img.ID.String(), img)
}

// Delete handles DELETE /api/images/:id.
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
