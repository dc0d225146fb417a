package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/middleware"
	"github.com/GearShare/service-rental/internal/platform/response"
)

// ItemHandler handles HTTP requests for the item catalog.
type ItemHandler struct {
	service *application.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *application.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers item routes. Reads are public.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	owner := middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin)

	items := r.Group("/api/v1/items")
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.POST("", authMW, owner, h.CreateItem)
		items.PUT("/:id", authMW, owner, h.UpdateItem)
		items.DELETE("/:id", authMW, owner, h.DeleteItem)
	}
}

// ListItems handles GET /api/v1/items?q=&cat=.
func (h *ItemHandler) ListItems(c *gin.Context) {
	result, err := h.service.ListItems(c.Request.Context(), c.Query("q"), c.Query("cat"))
	if err != nil {
		response.Error(c, err)
		return
	}
	for i := range result {
		withAbsoluteImages(c, &result[i])
	}
	response.Success(c, result)
}

// GetItem handles GET /api/v1/items/:id.
func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id", "item")
	if !ok {
		return
	}

	result, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	withAbsoluteImages(c, result)
	response.Success(c, result)
}

// CreateItem handles POST /api/v1/items.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CreateItem(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateItem handles PUT /api/v1/items/:id.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id", "item")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	if err := h.service.UpdateItem(c.Request.Context(), caller, itemID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteItem handles DELETE /api/v1/items/:id.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "id", "item")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), caller, itemID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func withAbsoluteImages(c *gin.Context, item *application.ItemDTO) {
	for i, p := range item.Images {
		item.Images[i] = absoluteURL(c, p)
	}
}
