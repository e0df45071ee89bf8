package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	DevUserEmail string

	// Credential sealing key (base64, 32 bytes once decoded)
	EncryptionKey string

	// AI provider for the agent scoring strategy and task suggestions
	AIProvider    string // "gemini", "ollama" or "auto"
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string
	AgentScoring  bool // strategy switch: agent when true, heuristic otherwise

	// Chroma Cloud vector index
	ChromaAPIKey   string
	ChromaTenant   string
	ChromaDatabase string

	// OAuth apps per connector kind
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURI     string
	AtlassianClientID     string
	AtlassianClientSecret string
	GithubClientID        string
	GithubClientSecret    string

	// Pub/Sub job dispatch (optional, inline execution when unset)
	GoogleProjectID   string
	JobTopic          string
	GoogleCredentials string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", "host=localhost user=mimir password=mimir dbname=mimir port=5432 sslmode=disable"),
		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		DevUserEmail: getEnv("DEV_USER_EMAIL", "dev@mimir.local"),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		AgentScoring:  getEnv("AGENT_SCORING", "") == "true",

		ChromaAPIKey:   getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:   getEnv("CHROMA_TENANT", ""),
		ChromaDatabase: getEnv("CHROMA_DATABASE", ""),

		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:     getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/oauth/callback"),
		AtlassianClientID:     getEnv("ATLASSIAN_CLIENT_ID", ""),
		AtlassianClientSecret: getEnv("ATLASSIAN_CLIENT_SECRET", ""),
		GithubClientID:        getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret:    getEnv("GITHUB_CLIENT_SECRET", ""),

		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		JobTopic:          getEnv("JOB_TOPIC", "mimir-jobs"),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
