package main

import (
	"context"
	"log"

	api "mimir-backend/cmd/api"
	authdomain "mimir-backend/internal/auth/domain"
	authRepo "mimir-backend/internal/auth/repository"
	authUsecase "mimir-backend/internal/auth/usecase"
	conndomain "mimir-backend/internal/connector/domain"
	connRepo "mimir-backend/internal/connector/repository"
	connProvider "mimir-backend/internal/connector/provider"
	connUsecase "mimir-backend/internal/connector/usecase"
	"mimir-backend/internal/ingest"
	"mimir-backend/internal/job"
	jobdomain "mimir-backend/internal/job/domain"
	jobRepo "mimir-backend/internal/job/repository"
	"mimir-backend/internal/prioritize"
	taskdomain "mimir-backend/internal/task/domain"
	taskRepo "mimir-backend/internal/task/repository"
	taskUsecase "mimir-backend/internal/task/usecase"
	"mimir-backend/pkg/ai"
	"mimir-backend/pkg/chroma"
	"mimir-backend/pkg/config"
	"mimir-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &taskdomain.Task{}, &taskdomain.TaskLink{}, &conndomain.Connector{}, &ingest.Embedding{}, &jobdomain.Job{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	connectorRepository := connRepo.NewGormConnectorRepository(db)
	embeddingRepository := ingest.NewGormEmbeddingRepository(db)
	jobRepository := jobRepo.NewGormJobRepository(db)

	// Initialize the vector index (optional)
	var vectorIndex ingest.VectorIndex
	if cfg.ChromaAPIKey != "" {
		chromaClient, err := chroma.NewClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Chroma client: %v. Semantic dedup will not be available.", err)
		} else {
			vectorIndex = chromaClient
			log.Println("Chroma client initialized successfully")
		}
	} else {
		log.Println("Warning: CHROMA_API_KEY not set. Semantic dedup will not be available.")
	}

	// Initialize the AI scorer (optional)
	scorer, err := ai.NewScorerService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}

	// Initialize use cases
	registry := connProvider.NewRegistry(cfg)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	taskUsecaseInstance := taskUsecase.NewTaskUsecase(taskRepository)
	connectorUsecaseInstance := connUsecase.NewConnectorUsecase(connectorRepository, registry, cfg)

	// Ingestion pipeline and prioritizer
	ingestService := ingest.NewService(taskRepository, connectorRepository, embeddingRepository, vectorIndex, registry, connectorUsecaseInstance)
	var agentScorer *prioritize.AgentScorer
	if cfg.AgentScoring && scorer != nil {
		agentScorer = prioritize.NewAgentScorer(scorer)
		log.Println("Agent scoring strategy enabled")
	}
	prioritizer := prioritize.NewPrioritizer(taskRepository, agentScorer)

	// Job orchestration: Pub/Sub dispatch with a worker when configured,
	// inline execution otherwise
	orchestrator := job.NewOrchestrator(jobRepository, taskRepository, connectorRepository, ingestService, prioritizer, scorer)
	var dispatcher job.Dispatcher
	if cfg.GoogleProjectID != "" {
		ctx := context.Background()
		pubsubDispatcher, err := job.NewPubSubDispatcher(ctx, cfg.GoogleProjectID, cfg.JobTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("Warning: Failed to initialize Pub/Sub dispatcher, running jobs inline: %v", err)
		} else {
			dispatcher = pubsubDispatcher
			worker, err := job.NewWorker(ctx, cfg.GoogleProjectID, cfg.JobTopic, cfg.GoogleCredentials, orchestrator)
			if err != nil {
				log.Printf("Warning: Failed to initialize job worker: %v", err)
			} else {
				go worker.Start(ctx)
			}
		}
	}
	if dispatcher == nil {
		dispatcher = job.NewInlineDispatcher(orchestrator)
		log.Println("No Pub/Sub project configured, jobs run inline")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, taskUsecaseInstance, connectorUsecaseInstance, taskRepository, orchestrator, dispatcher, cfg, db)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
