package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	AWSRegion        string `env:"AWS_REGION" envDefault:"us-east-1"`
	BedrockModelID   string `env:"BEDROCK_MODEL_ID" envDefault:"anthropic.claude-3-haiku-20240307-v1:0"`
	KnowledgeBaseID  string `env:"KNOWLEDGE_BASE_ID"`
	EmbeddingModelID string `env:"EMBEDDING_MODEL_ID" envDefault:"amazon.titan-embed-text-v2:0"`

	// RetrieverBackend selecciona "bedrock" (knowledge base administrado) o
	// "local" (indice pgvector alimentado por cmd/ingest).
	RetrieverBackend    string  `env:"RETRIEVER_BACKEND" envDefault:"bedrock"`
	MaxRetrievalResults int     `env:"MAX_RETRIEVAL_RESULTS" envDefault:"3"`
	MaxTokensToSample   int     `env:"MAX_TOKENS_TO_SAMPLE" envDefault:"500"`
	Temperature         float64 `env:"TEMPERATURE" envDefault:"0.7"`
	ChatHistoryLimit    int     `env:"CHAT_HISTORY_LIMIT" envDefault:"10"`

	JWTSecret            string `env:"JWT_SECRET_KEY"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"10080"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
