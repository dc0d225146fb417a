package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/middleware"
	"github.com/GearShare/service-rental/internal/platform/response"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service *application.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes registers listing routes. Reads are public.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	owner := middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin)

	listings := r.Group("/api/v1/listings")
	{
		listings.GET("", h.ListListings)
		listings.GET("/:id", h.GetListing)
		listings.POST("", authMW, owner, h.CreateListing)
		listings.PUT("/:id", authMW, owner, h.UpdateListing)
		listings.DELETE("/:id", authMW, owner, h.DeleteListing)
	}
}

// ListListings handles GET /api/v1/listings?itemId=.
func (h *ListingHandler) ListListings(c *gin.Context) {
	var itemID *uuid.UUID
	if raw := c.Query("itemId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid item ID")
			return
		}
		itemID = &id
	}

	result, err := h.service.ListListings(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	for i := range result {
		result[i].CoverImage = absoluteURL(c, result[i].CoverImage)
	}
	response.Success(c, result)
}

// GetListing handles GET /api/v1/listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := uuidParam(c, "id", "listing")
	if !ok {
		return
	}

	result, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.CoverImage = absoluteURL(c, result.CoverImage)
	response.Success(c, result)
}

// CreateListing handles POST /api/v1/listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CreateListing(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.CoverImage = absoluteURL(c, result.CoverImage)
	response.Created(c, result)
}

// UpdateListing handles PUT /api/v1/listings/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	listingID, ok := uuidParam(c, "id", "listing")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.ListingTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	if err := h.service.UpdateListing(c.Request.Context(), caller, listingID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteListing handles DELETE /api/v1/listings/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	listingID, ok := uuidParam(c, "id", "listing")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), caller, listingID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
