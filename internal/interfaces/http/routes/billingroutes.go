package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/handlers"
)

// BillingRouteConfig holds dependencies for billing routes. Auth is an
// injected capability: the accounts system owns the middleware that puts
// user_id into the gin context.
type BillingRouteConfig struct {
	BillingHandler *handlers.BillingHandler
	RequireAuth    gin.HandlerFunc
}

// SetupBillingRoutes configures billing routes.
func SetupBillingRoutes(engine *gin.Engine, cfg *BillingRouteConfig) {
	billing := engine.Group("/billing")
	{
		// The provider posts here; authentication is the payload signature.
		billing.POST("/webhook", cfg.BillingHandler.HandleWebhook)

		billingProtected := billing.Group("")
		billingProtected.Use(cfg.RequireAuth)
		{
			billingProtected.POST("/checkout", cfg.BillingHandler.CreateCheckout)
			billingProtected.POST("/portal", cfg.BillingHandler.CreatePortal)
			billingProtected.GET("/usage", cfg.BillingHandler.GetUsage)
		}
	}
}
