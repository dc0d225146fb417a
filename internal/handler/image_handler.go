package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/middleware"
	"github.com/GearShare/service-rental/internal/platform/response"
)

// ImageHandler handles item image uploads.
type ImageHandler struct {
	service  *application.ImageService
	maxBytes int64
}

// NewImageHandler creates a new ImageHandler accepting uploads of at most
// maxBytes.
func NewImageHandler(service *application.ImageService, maxBytes int64) *ImageHandler {
	return &ImageHandler{service: service, maxBytes: maxBytes}
}

// RegisterRoutes registers image routes.
func (h *ImageHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	images := r.Group("/api/v1/items")
	{
		images.GET("/:id/images", h.ListImages)
		images.POST("/:id/images", authMW, middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin), h.UploadImage)
	}
}

// UploadImage handles POST /api/v1/items/:id/images (multipart field "file").
func (h *ImageHandler) UploadImage(c *gin.Context) {
	itemID, ok := uuidParam(c, "id", "item")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	// Allow some room for multipart framing.
	limit := h.maxBytes + 4096
	if c.Request.ContentLength > limit {
		response.Error(c, application.ErrFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, application.ErrFileTooLarge)
			return
		}
		response.BadRequest(c, "multipart field \"file\" is required")
		return
	}
	if fh.Size > h.maxBytes {
		response.Error(c, application.ErrFileTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "unreadable upload")
		return
	}
	defer f.Close()

	result, err := h.service.UploadItemImage(c.Request.Context(), caller, itemID, f)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"id":        result.ID,
		"path":      result.Path,
		"url":       absoluteURL(c, result.Path),
		"sortOrder": result.SortOrder,
	})
}

// ListImages handles GET /api/v1/items/:id/images.
func (h *ImageHandler) ListImages(c *gin.Context) {
	itemID, ok := uuidParam(c, "id", "item")
	if !ok {
		return
	}

	result, err := h.service.ListItemImages(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
