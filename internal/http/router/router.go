package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/directory-backend/internal/config"
	"github.com/ignatzorin/directory-backend/internal/http/handlers"
	"github.com/ignatzorin/directory-backend/internal/http/middleware"
)

// Handlers набор хэндлеров API. Seed может быть nil.
type Handlers struct {
	Health     *handlers.HealthHandler
	Directory  *handlers.DirectoryHandler
	Onboarding *handlers.OnboardingHandler
	WS         *handlers.WSHandler
	Seed       *handlers.SeedHandler
}

func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	if h.Seed != nil && cfg.Env == "development" {
		api.POST("/seed", h.Seed.Seed)
	}

	rateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	directoryGroup := api.Group("/directory")
	directoryGroup.Use(rateLimit)
	{
		directoryGroup.GET("/profiles", h.Directory.ListProfiles)
		directoryGroup.GET("/groups", h.Directory.ListGroups)
		directoryGroup.GET("/categories", h.Directory.ListCategories)
		directoryGroup.GET("/locations", h.Directory.ListLocations)
	}

	api.GET("/profiles/:id", rateLimit, middleware.UUIDValidator("id"), h.Directory.GetProfile)
	api.GET("/groups/:id", rateLimit, middleware.UUIDValidator("id"), h.Directory.GetGroup)

	onboardingGroup := api.Group("/onboarding")
	onboardingGroup.Use(rateLimit)
	{
		onboardingGroup.POST("", h.Onboarding.Start)

		wizard := onboardingGroup.Group("/:id", middleware.UUIDValidator("id"))
		wizard.GET("", h.Onboarding.Get)
		wizard.GET("/preview", h.Onboarding.Preview)
		wizard.POST("/niche", h.Onboarding.SelectNiche)
		wizard.POST("/profile", h.Onboarding.SubmitProfile)
		wizard.POST("/edit", h.Onboarding.Edit)
		wizard.POST("/back", h.Onboarding.Back)
		wizard.POST("/confirm", h.Onboarding.Confirm)
	}

	api.GET("/ws", h.WS.Handle)

	return r
}
