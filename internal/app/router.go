package app

import (
	"wellness_backend/docs"
	"wellness_backend/internal/config"
	"wellness_backend/internal/middleware"
	"wellness_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerMissionRoutes(authGroup, c)
		a.registerTrackingRoutes(authGroup, c)
		a.registerActivityRoutes(authGroup, c)
		a.registerStatsRoutes(authGroup, c)
	}
}

func (a *App) registerMissionRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/missions", c.mission.ListMissions)
	group.POST("/missions/:id/accept", c.mission.AcceptMission)

	userMissions := group.Group("/user-missions")
	{
		userMissions.GET("", c.mission.ListUserMissions)
		userMissions.GET("/:id", c.mission.GetUserMission)
		userMissions.PATCH("/:id/progress", c.mission.UpdateProgress)
		userMissions.POST("/:id/abandon", c.mission.AbandonMission)
	}
}

func (a *App) registerTrackingRoutes(group *gin.RouterGroup, c *controllers) {
	tracking := group.Group("/tracking")
	{
		tracking.POST("/fitness", c.tracking.LogFitness)
		tracking.POST("/water", c.tracking.LogWater)
		tracking.POST("/sleep", c.tracking.LogSleep)
		tracking.POST("/meal", c.tracking.LogMeal)
		tracking.POST("/mood", c.tracking.LogMood)
		tracking.GET("/entries", c.tracking.ListEntries)
		tracking.GET("/summary", c.tracking.DaySummary)
	}
}

func (a *App) registerActivityRoutes(group *gin.RouterGroup, c *controllers) {
	activities := group.Group("/activities")
	{
		activities.GET("", c.activity.ListActivities)
		activities.GET("/history", c.activity.History)
		activities.POST("/:id/complete", c.activity.CompleteActivity)
	}
}

func (a *App) registerStatsRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/stats", c.stats.GetStats)
	group.GET("/points", c.stats.GetPoints)
}
