package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GearShare/service-rental/internal/application"
	"github.com/GearShare/service-rental/internal/platform/auth"
	"github.com/GearShare/service-rental/internal/platform/health"
	"github.com/GearShare/service-rental/internal/platform/middleware"
)

// ServiceName identifies this service in logs and health responses.
const ServiceName = "service-rental"

// Services are the application services exposed over HTTP.
type Services struct {
	Auth     *application.AuthService
	Items    *application.ItemService
	Listings *application.ListingService
	Images   *application.ImageService
	Bookings *application.BookingService
}

// RouterOptions configure the HTTP surface.
type RouterOptions struct {
	JWT            *auth.JWTManager
	Logger         *zap.Logger
	DB             health.Pinger
	CORSOrigins    []string
	UploadDir      string
	UploadMaxBytes int64
}

// NewRouter builds the gin engine with middleware, health checks, static
// uploads and every API route.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggerMiddleware(opts.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(opts.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(opts.DB, ServiceName).RegisterRoutes(router)

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	api := &router.RouterGroup
	NewAuthHandler(svc.Auth).RegisterRoutes(api, opts.JWT)
	NewItemHandler(svc.Items).RegisterRoutes(api, opts.JWT)
	NewImageHandler(svc.Images, opts.UploadMaxBytes).RegisterRoutes(api, opts.JWT)
	NewListingHandler(svc.Listings).RegisterRoutes(api, opts.JWT)
	NewBookingHandler(svc.Bookings).RegisterRoutes(api, opts.JWT)
	NewAdminBookingHandler(svc.Bookings).RegisterRoutes(api, opts.JWT)

	return router
}
