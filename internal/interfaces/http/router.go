package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/cache"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/config"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/email"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/repository"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/stripe"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/handlers"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/middleware"
	"github.com/Drafter5000/Drafter5000-sub000/internal/interfaces/http/routes"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// Router wires the billing module's HTTP surface. Auth and admin checks
// come from the accounts system as injected middleware.
type Router struct {
	engine         *gin.Engine
	billingHandler *handlers.BillingHandler
	planHandler    *handlers.PlanHandler
	requireAuth    gin.HandlerFunc
	requireAdmin   gin.HandlerFunc
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	cfg *config.Config,
	users usecases.UserDirectory,
	requireAuth gin.HandlerFunc,
	requireAdmin gin.HandlerFunc,
	log logger.Interface,
) *Router {
	engine := gin.New()

	planRepo := repository.NewPlanRepository(db, log)
	profileRepo := repository.NewBillingProfileRepository(db, log)
	recordRepo := repository.NewSubscriptionRecordRepository(db, log)
	usageRepo := repository.NewArticleUsageRepository(db, log)
	txManager := repository.NewGormTxManager(db)

	gw := stripe.NewGateway(&cfg.Stripe, log)
	eventStore := cache.NewProcessedEventStore(redisClient)
	notifier := email.NewSMTPTrialNotifier(&cfg.Email, users, log)

	planResolver := usecases.NewPlanResolver(planRepo, cfg.Billing.FreePlanID, log)

	processWebhookUC := usecases.NewProcessWebhookUseCase(
		gw, profileRepo, recordRepo, planResolver, eventStore, notifier, txManager, log,
	)
	createCheckoutUC := usecases.NewCreateCheckoutUseCase(
		planRepo, profileRepo, gw, users,
		cfg.Billing.FreePlanID,
		int64(cfg.Stripe.TrialPeriodDays),
		cfg.Stripe.CheckoutSuccess,
		cfg.Stripe.CheckoutCancel,
		log,
	)
	createPortalUC := usecases.NewCreatePortalUseCase(profileRepo, gw, cfg.Stripe.PortalReturnURL, log)
	checkUsageUC := usecases.NewCheckUsageUseCase(profileRepo, usageRepo, planResolver, log)

	createPlanUC := usecases.NewCreatePlanUseCase(planRepo, log)
	updatePlanUC := usecases.NewUpdatePlanUseCase(planRepo, log)
	deactivatePlanUC := usecases.NewDeactivatePlanUseCase(planRepo, gw, cfg.Billing.FreePlanID, log)
	getPlanUC := usecases.NewGetPlanUseCase(planRepo)
	listPlansUC := usecases.NewListPlansUseCase(planRepo)
	getPublicPlansUC := usecases.NewGetPublicPlansUseCase(planRepo)
	syncCatalogUC := usecases.NewSyncCatalogUseCase(planRepo, gw, log)

	billingHandler := handlers.NewBillingHandler(
		processWebhookUC, createCheckoutUC, createPortalUC, checkUsageUC, log,
	)
	planHandler := handlers.NewPlanHandler(
		createPlanUC, updatePlanUC, deactivatePlanUC, getPlanUC,
		listPlansUC, getPublicPlansUC, syncCatalogUC, log,
	)

	return &Router{
		engine:         engine,
		billingHandler: billingHandler,
		planHandler:    planHandler,
		requireAuth:    requireAuth,
		requireAdmin:   requireAdmin,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(cfg *config.Config, log logger.Interface) {
	r.engine.Use(middleware.Logger(log))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.SetupBillingRoutes(r.engine, &routes.BillingRouteConfig{
		BillingHandler: r.billingHandler,
		RequireAuth:    r.requireAuth,
	})

	routes.SetupPlanRoutes(r.engine, &routes.PlanRouteConfig{
		PlanHandler:  r.planHandler,
		RequireAuth:  r.requireAuth,
		RequireAdmin: r.requireAdmin,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
