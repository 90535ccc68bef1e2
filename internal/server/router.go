package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/sproutlingo-backend/internal/handlers"
	"github.com/yungbote/sproutlingo-backend/internal/middleware"
)

type RouterConfig struct {
	IdentityMiddleware *middleware.IdentityMiddleware
	SessionHandler     *handlers.SessionHandler
	TreeHandler        *handlers.TreeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("sproutlingo-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.IdentityMiddleware.RequireIdentity())
	{
		api.POST("/sessions", cfg.SessionHandler.Start)
		api.GET("/sessions/:id", cfg.SessionHandler.Get)
		api.POST("/sessions/:id/activities", cfg.SessionHandler.ReportActivity)
		api.POST("/sessions/:id/end", cfg.SessionHandler.End)

		api.GET("/tree", cfg.TreeHandler.Get)
		api.POST("/tree/refresh", cfg.TreeHandler.Refresh)
		api.POST("/tree/grants", cfg.TreeHandler.AddGrant)
		api.POST("/tree/grants/:id/consume", cfg.TreeHandler.ConsumeGrant)
	}

	return router
}
