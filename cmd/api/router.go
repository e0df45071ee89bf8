package api

import (
	"net/http"

	"mimir-backend/internal/auth/delivery"
	authUsecase "mimir-backend/internal/auth/usecase"
	connectorDelivery "mimir-backend/internal/connector/delivery"
	"mimir-backend/internal/graph"
	"mimir-backend/internal/job"
	taskDelivery "mimir-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authUsecase.AuthUsecase,
	taskHandler *taskDelivery.TaskHandler,
	connectorHandler *connectorDelivery.ConnectorHandler,
	graphHandler *graph.Handler,
	jobHandler *job.Handler,
	db *gorm.DB,
) {
	// Liveness and readiness (no auth required)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// OAuth callback comes from the provider, not the app, so it
		// carries no auth header; state identifies the user
		api.GET("/oauth/callback", connectorHandler.OAuthCallback)

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(delivery.AuthMiddleware(authUsecase))
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.POST("/:id/undo", taskHandler.UndoTask)
		}

		// Graph routes (protected)
		graphGroup := api.Group("/graph")
		graphGroup.Use(delivery.AuthMiddleware(authUsecase))
		{
			graphGroup.GET("", graphHandler.GetGraph)
			graphGroup.GET("/filters", graphHandler.GetFilters)
		}

		// Connector routes (protected)
		connectors := api.Group("/connectors")
		connectors.Use(delivery.AuthMiddleware(authUsecase))
		{
			connectors.GET("", connectorHandler.ListConnectors)
			connectors.POST("/:kind/connect", connectorHandler.Connect)
			connectors.POST("/:kind/test", connectorHandler.Test)
		}

		// Job routes (protected)
		jobs := api.Group("/jobs")
		jobs.Use(delivery.AuthMiddleware(authUsecase))
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.POST("/suggest", jobHandler.Suggest)
			jobs.GET("/:id", jobHandler.GetJob)
		}

		// Dev routes (protected)
		dev := api.Group("/dev")
		dev.Use(delivery.AuthMiddleware(authUsecase))
		{
			dev.POST("/seed", taskHandler.SeedTasks)
		}
	}
}
