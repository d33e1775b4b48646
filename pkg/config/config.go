package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Fireflies FirefliesConfig
	OpenAI    OpenAIConfig
	Storage   StorageConfig
	Sync      SyncConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          string `envconfig:"PORT" default:"8080"`
	Host          string `envconfig:"HOST" default:"0.0.0.0"`
	Environment   string `envconfig:"ENVIRONMENT" default:"development"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"meeting_intel"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// RedisConfig holds optional Redis configuration. Empty host disables caching.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// FirefliesConfig holds transcript source configuration
type FirefliesConfig struct {
	APIKey         string `envconfig:"FIREFLIES_API_KEY"`
	BaseURL        string `envconfig:"FIREFLIES_BASE_URL" default:"https://api.fireflies.ai/graphql"`
	TimeoutSeconds int    `envconfig:"FIREFLIES_TIMEOUT_SECONDS" default:"60"`
	MaxRetries     int    `envconfig:"FIREFLIES_MAX_RETRIES" default:"3"`
}

// OpenAIConfig holds LLM and embedding configuration
type OpenAIConfig struct {
	APIKey          string  `envconfig:"OPENAI_API_KEY"`
	BaseURL         string  `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	CompletionModel string  `envconfig:"OPENAI_COMPLETION_MODEL" default:"gpt-4-turbo"`
	EmbeddingModel  string  `envconfig:"OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDims   int     `envconfig:"OPENAI_EMBEDDING_DIMS" default:"384"`
	Temperature     float64 `envconfig:"OPENAI_TEMPERATURE" default:"0.3"`
	MaxTokens       int     `envconfig:"OPENAI_MAX_TOKENS" default:"2000"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-transcripts"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string `envconfig:"STORAGE_PUBLIC_URL"`
}

// SyncConfig holds pipeline tuning knobs
type SyncConfig struct {
	HoursBack           int     `envconfig:"SYNC_HOURS_BACK" default:"24"`
	MinMeetings         int     `envconfig:"SYNC_MIN_MEETINGS" default:"20"`
	IntervalHours       int     `envconfig:"SYNC_INTERVAL_HOURS" default:"1"`
	AssignmentThreshold float64 `envconfig:"ASSIGNMENT_THRESHOLD" default:"0.6"`
	ProcessingVersion   int     `envconfig:"PROCESSING_VERSION" default:"1"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fireflies.APIKey == "" {
		return apperrors.ErrConfigMissing("FIREFLIES_API_KEY")
	}
	if c.OpenAI.APIKey == "" {
		return apperrors.ErrConfigMissing("OPENAI_API_KEY")
	}
	if c.Database.Name == "" {
		return apperrors.ErrConfigMissing("DB_NAME")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// RedisEnabled reports whether a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
