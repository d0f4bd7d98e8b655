package routes

import (
	"net/http"

	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/handlers"
	"github.com/carbonova/carbonova-backend/internal/middleware"
	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies carries everything SetupRouter wires into routes
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	ActivityHandler  *handlers.ActivityHandler
	DashboardHandler *handlers.DashboardHandler
	RewardHandler    *handlers.RewardHandler
	ReviewHandler    *handlers.ReviewHandler
	CatalogHandler   *handlers.CatalogHandler

	Tokens      middleware.TokenParser
	Revocations middleware.RevocationChecker
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))

	// Room for one proof file plus the text fields.
	router.MaxMultipartMemory = cfg.Activity.MaxProofBytes + handlers.MaxFormOverhead

	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/signup", deps.AuthHandler.SignUp)
			auth.POST("/signin", deps.AuthHandler.SignIn)
			auth.POST("/confirm", deps.AuthHandler.ConfirmEmail)
		}

		public.GET("/activity-types", deps.ActivityHandler.ListActivityTypes)
	}

	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens, deps.Revocations))
	{
		protected.POST("/auth/signout", deps.AuthHandler.SignOut)
		protected.GET("/auth/me", deps.AuthHandler.Me)

		protected.POST("/activities", deps.ActivityHandler.Submit)
		protected.POST("/activities/preview", deps.ActivityHandler.Preview)
		protected.GET("/geocode/reverse", deps.ActivityHandler.ReverseGeocode)

		protected.GET("/dashboard", deps.DashboardHandler.Summary)

		protected.GET("/vouchers", deps.RewardHandler.ListVouchers)
		protected.POST("/vouchers/:id/redeem", deps.RewardHandler.Redeem)
		protected.GET("/redemptions", deps.RewardHandler.History)
		protected.GET("/points/transactions", deps.RewardHandler.PointHistory)

		review := protected.Group("/review")
		review.Use(middleware.RequireRole(models.RoleReviewer, models.RoleAdmin))
		{
			review.GET("/activities", deps.ReviewHandler.List)
			review.POST("/activities/:id/approve", deps.ReviewHandler.Approve)
			review.POST("/activities/:id/reject", deps.ReviewHandler.Reject)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/activity-types", deps.CatalogHandler.CreateActivityType)
			admin.POST("/vouchers", deps.CatalogHandler.CreateVoucher)
		}
	}

	return router
}
