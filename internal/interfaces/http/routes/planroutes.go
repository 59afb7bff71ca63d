package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/handlers"
)

// PlanRouteConfig holds dependencies for plan routes.
type PlanRouteConfig struct {
	PlanHandler  *handlers.PlanHandler
	RequireAuth  gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
}

// SetupPlanRoutes configures plan routes.
func SetupPlanRoutes(engine *gin.Engine, cfg *PlanRouteConfig) {
	plans := engine.Group("/plans")
	{
		// Public pricing page listing (no authentication required)
		plans.GET("/public", cfg.PlanHandler.GetPublicPlans)

		// Admin-only endpoints
		plansAdmin := plans.Group("")
		plansAdmin.Use(cfg.RequireAuth)
		plansAdmin.Use(cfg.RequireAdmin)
		{
			plansAdmin.GET("", cfg.PlanHandler.ListPlans)
			plansAdmin.POST("", cfg.PlanHandler.CreatePlan)
			plansAdmin.POST("/sync", cfg.PlanHandler.SyncCatalog)
			plansAdmin.GET("/:id", cfg.PlanHandler.GetPlan)
			plansAdmin.PUT("/:id", cfg.PlanHandler.UpdatePlan)
			plansAdmin.DELETE("/:id", cfg.PlanHandler.DeactivatePlan)
			plansAdmin.POST("/:id/sync", cfg.PlanHandler.SyncPlan)
		}
	}
}
