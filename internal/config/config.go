package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "LEADBOT"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIRPS           float64       `envconfig:"OPENAI_RPS" default:"0"`
	EmbeddingModel      string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	FallbackModel       string        `envconfig:"FALLBACK_MODEL" default:"gpt-4o-mini"`
	ChunkMaxTokens      int           `envconfig:"CHUNK_MAX_TOKENS" default:"400"`
	GenerationTimeout   time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	EmbeddingTimeout    time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"20s"`

	GoogleCredentialsFile string        `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	CalendarID            string        `envconfig:"CALENDAR_ID"`
	CalendarConsultant    string        `envconfig:"CALENDAR_CONSULTANT" default:"Victória Amorim"`
	CalendarTimezone      string        `envconfig:"CALENDAR_TIMEZONE" default:"America/Sao_Paulo"`
	CalendarTimeout       time.Duration `envconfig:"CALENDAR_TIMEOUT" default:"10s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"leadbot-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// APITokens maps a client name to its bearer token, e.g.
	// "dashboard:secret1,webhook:secret2". Empty disables authentication.
	APITokens map[string]string `envconfig:"API_TOKENS"`

	DefaultChannelID int64 `envconfig:"DEFAULT_CHANNEL_ID" default:"2"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	LogPath  string `envconfig:"LOG_PATH"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SummaryInterval is how often stale conversation summaries are
	// refreshed. Zero disables the worker.
	SummaryInterval  time.Duration `envconfig:"SUMMARY_INTERVAL" default:"5m"`
	SummaryBatchSize int           `envconfig:"SUMMARY_BATCH_SIZE" default:"20"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasCalendar() bool {
	return c.GoogleCredentialsFile != "" && c.CalendarID != ""
}
