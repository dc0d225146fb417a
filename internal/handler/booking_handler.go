package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/middleware"
	"github.com/GearShare/service-rental/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	renter := middleware.RequireRole(auth.RoleRenter, auth.RoleAdmin)
	owner := middleware.RequireRole(auth.RoleOwner, auth.RoleAdmin)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", renter, h.CreateBooking)
		bookings.GET("/me", renter, h.MyBookings)
		bookings.GET("/owner", owner, h.OwnerPending)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", owner, h.SetStatus)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), caller.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// MyBookings handles GET /api/v1/bookings/me.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	result, err := h.service.MyBookings(c.Request.Context(), caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// OwnerPending handles GET /api/v1/bookings/owner.
func (h *BookingHandler) OwnerPending(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	result, err := h.service.OwnerPendingBookings(c.Request.Context(), caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := uuidParam(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) SetStatus(c *gin.Context) {
	bookingID, ok := uuidParam(c, "id", "booking")
	if !ok {
		return
	}
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), bookingID, req.Status, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
