package config

import (
	"os"
	"strings"
)

// LLM providers supported by the gateway factory.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds the application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// 言語モデルゲートウェイ
	LLMProvider           string
	LLMGatewayURL         string
	LLMAPIKey             string
	LLMModel              string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string
	EmbeddingModel        string

	// DatabaseURL が空の場合はメモリストアで起動する
	DatabaseURL string

	// QdrantURL が空の場合、チャットの参照情報検索は無効になる
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	APIKey           string
	AdminUsername    string
	AdminPassword    string
	SystemPromptPath string
	SchemesPath      string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LLMProvider:           strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMGatewayURL:         getEnv("LLM_GATEWAY_URL", ""),
		LLMAPIKey:             getEnv("LLM_API_KEY", ""),
		LLMModel:              getEnv("LLM_MODEL", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", ""),
		EmbeddingModel:        getEnv("EMBEDDING_MODEL", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		QdrantURL:             getEnv("QDRANT_URL", ""),
		QdrantAPIKey:          getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:      getEnv("QDRANT_COLLECTION", "agrasar_schemes"),
		APIKey:                getEnv("API_KEY", ""),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		SystemPromptPath:      getEnv("SYSTEM_PROMPT_PATH", ""),
		SchemesPath:           getEnv("SCHEMES_PATH", ""),
	}
}

// IsDevelopment は開発環境かどうかを返します。
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
