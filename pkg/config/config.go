package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Assembly AssemblyConfig `envconfig:"ASSEMBLYAI"`
	Gemini   GeminiConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Environment     string        `split_words:"true" default:"development"`
	AllowedOrigins  []string      `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"meeting_pipeline"`
	SSLMode     string `split_words:"true" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"6379"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
}

// JWTConfig holds bearer token configuration
type JWTConfig struct {
	Secret string        `split_words:"true"`
	Issuer string        `split_words:"true" default:"meeting-pipeline"`
	Expiry time.Duration `split_words:"true" default:"15m"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	Region          string `split_words:"true" default:"us-east-1"`
	UseSSL          bool   `split_words:"true" default:"false"`
}

// AssemblyConfig holds AssemblyAI configuration
type AssemblyConfig struct {
	APIKey         string `split_words:"true"`
	BaseURL        string `split_words:"true" default:"https://api.assemblyai.com"`
	WebhookSecret  string `split_words:"true"`
	BaseWebhookURL string `envconfig:"BASE_WEBHOOK_URL"`
}

// GeminiConfig holds summarization model configuration
type GeminiConfig struct {
	APIKey  string `split_words:"true"`
	Model   string `split_words:"true" default:"gemini-2.5-flash"`
	BaseURL string `split_words:"true"`
}

// WorkerConfig holds job queue and worker pool configuration
type WorkerConfig struct {
	QueueName       string        `split_words:"true" default:"meeting-processing"`
	ServerName      string        `split_words:"true"`
	Concurrency     int           `split_words:"true" default:"5"`
	TaskTimeout     time.Duration `split_words:"true" default:"5m"`
	MaxAttempts     int           `split_words:"true" default:"3"`
	BaseDelay       time.Duration `split_words:"true" default:"1s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `split_words:"true" default:"info"`
	Format     string `split_words:"true" default:"json"`
	Output     string `split_words:"true" default:"stdout"`
	File       string `split_words:"true" default:"logs/app.log"`
	MaxSize    int    `split_words:"true" default:"100"`
	MaxBackups int    `split_words:"true" default:"5"`
	MaxAge     int    `split_words:"true" default:"30"`
	Compress   bool   `split_words:"true" default:"true"`
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

// Validate checks settings every binary needs
func (c *Config) Validate() error {
	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}
	if c.Worker.MaxAttempts <= 0 {
		return fmt.Errorf("WORKER_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// ValidateAPI checks settings the HTTP API needs
func (c *Config) ValidateAPI() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Assembly.WebhookSecret == "" {
		return fmt.Errorf("ASSEMBLYAI_WEBHOOK_SECRET is required")
	}
	return nil
}

// ValidateWorker checks settings the pipeline worker needs
func (c *Config) ValidateWorker() error {
	if c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if c.Assembly.WebhookSecret == "" {
		return fmt.Errorf("ASSEMBLYAI_WEBHOOK_SECRET is required")
	}
	if c.Assembly.BaseWebhookURL == "" {
		return fmt.Errorf("BASE_WEBHOOK_URL is required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
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

// GetWebhookURL returns the callback URL handed to AssemblyAI
func (c *Config) GetWebhookURL() string {
	return c.Assembly.BaseWebhookURL + "/v1/webhooks/assemblyai"
}
