// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/config"
	"github.com/ocioclub/club-backend/internal/handlers"
	"github.com/ocioclub/club-backend/internal/middleware"
	"github.com/ocioclub/club-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config, gateway services.PaymentGateway) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	notificationService := services.NewNotificationService(db, cfg)

	memberService := services.NewMemberService(db)
	catalogService := services.NewCatalogService(db)
	checkoutService := services.NewCheckoutService(db, memberService, catalogService, gateway, storageService)
	reconcileService := services.NewReconcileService(db, notificationService)

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(gateway, reconcileService, cfg)
	confirmHandler := handlers.NewConfirmHandler(gateway, reconcileService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Checkout routes
		checkout := v1.Group("")
		checkout.Use(middleware.CheckoutRateLimit())
		{
			checkout.POST("/checkout", checkoutHandler.BeginMembershipCheckout)
			checkout.POST("/course-checkout", checkoutHandler.BeginCourseCheckout)
		}

		// Payment confirmation paths
		v1.POST("/webhooks/payment", webhookHandler.HandlePaymentEvent)
		v1.GET("/checkout/confirm", confirmHandler.ConfirmCheckout)

		// Catalog routes (public)
		v1.GET("/catalog", catalogHandler.GetCatalog)
		v1.GET("/courses/:id/availability", catalogHandler.GetCourseAvailability)
	}

	return r, nil
}
