package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/subosito/gotenv"
)

// LoadEnv loads config/envs/.env.<env> when present and falls back to the
// OS environment otherwise.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment")
	}
}

type Config struct {
	Port string

	// Postgres holds both the analysis cache and the trusted-news vectors.
	DatabaseURL string

	LLMProvider  string // "gemini" or "openai"
	LLMModel     string
	GoogleAPIKey string
	OpenAIAPIKey string

	EmbeddingProvider string // "hugot" or "genai"
	EmbeddingModel    string
	ClassifierModel   string
	ModelDir          string

	EnableCache    bool
	EnableHotCache bool
	ValkeyAddress  string
	ValkeyPassword string

	KafkaBroker string
}

// FromEnv builds the service configuration from environment variables,
// applying the defaults the service ships with.
func FromEnv() Config {
	return Config{
		Port:              getenv("PORT", "8000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LLMProvider:       getenv("LLM_PROVIDER", "gemini"),
		LLMModel:          getenv("LLM_MODEL", "gemini-2.5-flash"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		EmbeddingProvider: getenv("EMBEDDING_PROVIDER", "hugot"),
		EmbeddingModel:    getenv("EMBEDDING_MODEL", "BAAI/bge-m3"),
		ClassifierModel:   getenv("CLASSIFIER_MODEL", "neuralmind/bert-base-portuguese-cased"),
		ModelDir:          getenv("MODEL_DIR", "./models"),
		EnableCache:       getenvBool("ENABLE_CACHE", true),
		EnableHotCache:    getenvBool("ENABLE_HOT_CACHE", false),
		ValkeyAddress:     os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword:    os.Getenv("VALKEY_PASSWORD"),
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return b
}
