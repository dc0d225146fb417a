package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/middleware"
	"github.com/GearShare/service-rental/internal/platform/response"
)

// AuthHandler handles registration, login and identity lookups.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *application.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	group := r.Group("/api/v1/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)
		group.GET("/me", middleware.AuthMiddleware(jwtManager), h.Me)
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	result, err := h.service.Me(c.Request.Context(), caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
