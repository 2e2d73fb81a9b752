package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider    string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	ChatModel      string
	EmbeddingModel string

	VectorBackend  string
	PineconeAPIKey string
	PineconeIndex  string
	PineconeCloud  string
	PineconeRegion string
	DatabaseURL    string

	FrontendOrigin string
	HTTPPort       string
	LogLevel       string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ChatModel:      getEnv("CHAT_MODEL", ""),      // empty means the provider's default
		EmbeddingModel: getEnv("EMBEDDING_MODEL", ""), // empty means the provider's default
		VectorBackend:  getEnv("VECTOR_BACKEND", "pinecone"),
		PineconeAPIKey: getEnv("PINECONE_API_KEY", ""),
		PineconeIndex:  getEnv("PINECONE_INDEX", "text-embeddings"),
		PineconeCloud:  getEnv("PINECONE_CLOUD", "aws"),
		PineconeRegion: getEnv("PINECONE_REGION", "us-east-1"),
		DatabaseURL:    getEnv("DATABASE_URL", "askbridge.db"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", ""), // empty means allow any origin
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
	}

	switch AppConfig.LLMProvider {
	case "openai":
		if AppConfig.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required when LLM_PROVIDER=openai")
		}
	case "gemini":
		if AppConfig.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required when LLM_PROVIDER=gemini")
		}
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q (expected \"openai\" or \"gemini\")", AppConfig.LLMProvider)
	}

	switch AppConfig.VectorBackend {
	case "pinecone":
		if AppConfig.PineconeAPIKey == "" {
			log.Fatal("PINECONE_API_KEY environment variable is required when VECTOR_BACKEND=pinecone")
		}
	case "sqlite":
		// DATABASE_URL has a usable default, nothing to check
	default:
		log.Fatalf("Unknown VECTOR_BACKEND %q (expected \"pinecone\" or \"sqlite\")", AppConfig.VectorBackend)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
