package api

import (
	"log"

	authUsecasePkg "mimir-backend/internal/auth/usecase"
	connectorDelivery "mimir-backend/internal/connector/delivery"
	connectorUsecasePkg "mimir-backend/internal/connector/usecase"
	"mimir-backend/internal/graph"
	"mimir-backend/internal/job"
	taskDelivery "mimir-backend/internal/task/delivery"
	taskRepo "mimir-backend/internal/task/repository"
	taskUsecasePkg "mimir-backend/internal/task/usecase"
	"mimir-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	authUsecase      authUsecasePkg.AuthUsecase
	config           *config.Config
	db               *gorm.DB
	taskHandler      *taskDelivery.TaskHandler
	connectorHandler *connectorDelivery.ConnectorHandler
	graphHandler     *graph.Handler
	jobHandler       *job.Handler
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	taskUc taskUsecasePkg.TaskUsecase,
	connectorUc connectorUsecasePkg.ConnectorUsecase,
	taskRepository taskRepo.TaskRepository,
	orchestrator *job.Orchestrator,
	dispatcher job.Dispatcher,
	cfg *config.Config,
	db *gorm.DB,
) *Handler {
	taskHandler := taskDelivery.NewTaskHandler(taskUc)
	connectorHandler := connectorDelivery.NewConnectorHandler(connectorUc)
	graphHandler := graph.NewHandler(graph.NewBuilder(taskRepository))
	jobHandler := job.NewHandler(orchestrator, dispatcher)
	log.Println("API handlers initialized")

	return &Handler{
		authUsecase:      authUc,
		config:           cfg,
		db:               db,
		taskHandler:      taskHandler,
		connectorHandler: connectorHandler,
		graphHandler:     graphHandler,
		jobHandler:       jobHandler,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Dev-User, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.taskHandler, h.connectorHandler, h.graphHandler, h.jobHandler, h.db)

	return r.Run(addr)
}
