package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Memory   MemoryConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI        string
	Voyage        string
	GoogleGemini  string
	TurnTopicName string // Conversation turn recording topic
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMBaseURL        string
	AnswerModel       string
	TransformModel    string
	RerankModel       string
	EmbeddingProvider string // "voyage" or "gemini"
	EmbeddingModel    string
	OllamaBaseURL     string
}

type MemoryConfig struct {
	BaseURL     string
	APIKey      string
	RecentLimit int
}

type StorageConfig struct {
	Endpoint       string
	AuthToken      string
	TimeoutSeconds int
}

type PipelineConfig struct {
	MaxCandidates     int
	MaxSelected       int
	HistoryLimit      int
	TransformCacheMax int
	ImageCacheMax     int
	EnableReranking   bool
	EnableImageFetch  bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:        getEnv("OPENAI_API_KEY", ""),
			Voyage:        getEnv("VOYAGE_API_KEY", ""),
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TurnTopicName: getEnv("RECORD_TURN_TOPIC_NAME", "RECORD_CHAT_TURN"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			AnswerModel:       getEnv("ANSWER_MODEL", "gpt-4o"),
			TransformModel:    getEnv("TRANSFORM_MODEL", "gpt-4o-mini"),
			RerankModel:       getEnv("RERANK_MODEL", "gpt-4o"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "voyage"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "voyage-multimodal-3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Memory: MemoryConfig{
			BaseURL:     getEnv("MEMORY_SERVICE_URL", "http://localhost:8000"),
			APIKey:      getEnv("MEMORY_SERVICE_API_KEY", ""),
			RecentLimit: getEnvAsInt("MEMORY_RECENT_LIMIT", 10),
		},
		Storage: StorageConfig{
			Endpoint:       getEnv("OBJECT_STORE_ENDPOINT", ""),
			AuthToken:      getEnv("OBJECT_STORE_AUTH_TOKEN", ""),
			TimeoutSeconds: getEnvAsInt("OBJECT_STORE_TIMEOUT_SECONDS", 30),
		},
		Pipeline: PipelineConfig{
			MaxCandidates:     getEnvAsInt("PIPELINE_MAX_CANDIDATES", 10),
			MaxSelected:       getEnvAsInt("PIPELINE_MAX_SELECTED", 2),
			HistoryLimit:      getEnvAsInt("PIPELINE_HISTORY_LIMIT", 20),
			TransformCacheMax: getEnvAsInt("TRANSFORM_CACHE_MAX", 1000),
			ImageCacheMax:     getEnvAsInt("IMAGE_CACHE_MAX", 100),
			EnableReranking:   getEnvAsBool("ENABLE_RERANKING", true),
			EnableImageFetch:  getEnvAsBool("ENABLE_IMAGE_FETCHING", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
