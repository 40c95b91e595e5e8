package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Agent  AgentConfig
	Budget BudgetConfig
	Store  StoreConfig
	Email  EmailConfig
	Auth   AuthConfig
	CORS   CORSConfig
	Log    LogConfig
	Upload UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// AgentProviderConfig holds settings for a single model-agent tier.
type AgentProviderConfig struct {
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	TimeoutSecs   int     `mapstructure:"timeout_secs"`
	InputPerMTok  float64 `mapstructure:"input_per_mtok"`
	OutputPerMTok float64 `mapstructure:"output_per_mtok"`
}

// AgentConfig holds the two agent tiers: a multimodal extraction tier
// and a cheaper scoring tier.
type AgentConfig struct {
	Extract AgentProviderConfig `mapstructure:"extract"`
	Score   AgentProviderConfig `mapstructure:"score"`
}

// BudgetConfig holds the process-wide daily scoring budget.
type BudgetConfig struct {
	DailyLimitUSD float64 `mapstructure:"daily_limit_usd"`
}

// StoreConfig holds document store settings. Provider is "s3" or "memory".
type StoreConfig struct {
	Provider  string `mapstructure:"provider"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// EmailConfig holds review-notification delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ReviewerTo  string `mapstructure:"reviewer_to"`
}

// AuthConfig holds bearer-token settings. An empty secret disables auth.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// UploadConfig limits accepted document uploads.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the PAYFILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAYFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Agent defaults
	v.SetDefault("agent.extract.api_key", "")
	v.SetDefault("agent.extract.model", "claude-sonnet-4-20250514")
	v.SetDefault("agent.extract.timeout_secs", 120)
	v.SetDefault("agent.extract.input_per_mtok", 3.00)
	v.SetDefault("agent.extract.output_per_mtok", 15.00)
	v.SetDefault("agent.score.api_key", "")
	v.SetDefault("agent.score.model", "claude-3-5-haiku-20241022")
	v.SetDefault("agent.score.timeout_secs", 60)
	v.SetDefault("agent.score.input_per_mtok", 0.80)
	v.SetDefault("agent.score.output_per_mtok", 4.00)

	// Budget defaults
	v.SetDefault("budget.daily_limit_usd", 1.00)

	// Store defaults
	v.SetDefault("store.provider", "memory")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("store.bucket", "payfill-documents")
	v.SetDefault("store.prefix", "documents/")
	v.SetDefault("store.endpoint", "")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@payfill.local")
	v.SetDefault("email.from_name", "Payfill")
	v.SetDefault("email.reviewer_to", "")

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "payfill")

	// Log defaults
	v.SetDefault("log.level", "debug")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "PAYFILL_SERVER_PORT",
		"server.read_timeout":           "PAYFILL_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "PAYFILL_SERVER_WRITE_TIMEOUT",
		"server.environment":            "PAYFILL_SERVER_ENVIRONMENT",
		"agent.extract.api_key":         "PAYFILL_AGENT_EXTRACT_API_KEY",
		"agent.extract.model":           "PAYFILL_AGENT_EXTRACT_MODEL",
		"agent.extract.timeout_secs":    "PAYFILL_AGENT_EXTRACT_TIMEOUT_SECS",
		"agent.extract.input_per_mtok":  "PAYFILL_AGENT_EXTRACT_INPUT_PER_MTOK",
		"agent.extract.output_per_mtok": "PAYFILL_AGENT_EXTRACT_OUTPUT_PER_MTOK",
		"agent.score.api_key":           "PAYFILL_AGENT_SCORE_API_KEY",
		"agent.score.model":             "PAYFILL_AGENT_SCORE_MODEL",
		"agent.score.timeout_secs":      "PAYFILL_AGENT_SCORE_TIMEOUT_SECS",
		"agent.score.input_per_mtok":    "PAYFILL_AGENT_SCORE_INPUT_PER_MTOK",
		"agent.score.output_per_mtok":   "PAYFILL_AGENT_SCORE_OUTPUT_PER_MTOK",
		"budget.daily_limit_usd":        "PAYFILL_BUDGET_DAILY_LIMIT_USD",
		"store.provider":                "PAYFILL_STORE_PROVIDER",
		"store.region":                  "PAYFILL_STORE_REGION",
		"store.bucket":                  "PAYFILL_STORE_BUCKET",
		"store.prefix":                  "PAYFILL_STORE_PREFIX",
		"store.endpoint":                "PAYFILL_STORE_ENDPOINT",
		"store.access_key":              "PAYFILL_STORE_ACCESS_KEY",
		"store.secret_key":              "PAYFILL_STORE_SECRET_KEY",
		"email.provider":                "PAYFILL_EMAIL_PROVIDER",
		"email.region":                  "PAYFILL_EMAIL_REGION",
		"email.from_address":            "PAYFILL_EMAIL_FROM_ADDRESS",
		"email.from_name":               "PAYFILL_EMAIL_FROM_NAME",
		"email.reviewer_to":             "PAYFILL_EMAIL_REVIEWER_TO",
		"auth.secret":                   "PAYFILL_AUTH_SECRET",
		"auth.issuer":                   "PAYFILL_AUTH_ISSUER",
		"cors.allowed_origins":          "PAYFILL_CORS_ALLOWED_ORIGINS",
		"log.level":                     "PAYFILL_LOG_LEVEL",
		"upload.max_file_size_mb":       "PAYFILL_UPLOAD_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PAYFILL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PAYFILL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Agent = AgentConfig{
		Extract: AgentProviderConfig{
			APIKey:        v.GetString("agent.extract.api_key"),
			Model:         v.GetString("agent.extract.model"),
			TimeoutSecs:   v.GetInt("agent.extract.timeout_secs"),
			InputPerMTok:  v.GetFloat64("agent.extract.input_per_mtok"),
			OutputPerMTok: v.GetFloat64("agent.extract.output_per_mtok"),
		},
		Score: AgentProviderConfig{
			APIKey:        v.GetString("agent.score.api_key"),
			Model:         v.GetString("agent.score.model"),
			TimeoutSecs:   v.GetInt("agent.score.timeout_secs"),
			InputPerMTok:  v.GetFloat64("agent.score.input_per_mtok"),
			OutputPerMTok: v.GetFloat64("agent.score.output_per_mtok"),
		},
	}
	cfg.Budget = BudgetConfig{
		DailyLimitUSD: v.GetFloat64("budget.daily_limit_usd"),
	}
	cfg.Store = StoreConfig{
		Provider:  v.GetString("store.provider"),
		Region:    v.GetString("store.region"),
		Bucket:    v.GetString("store.bucket"),
		Prefix:    v.GetString("store.prefix"),
		Endpoint:  v.GetString("store.endpoint"),
		AccessKey: v.GetString("store.access_key"),
		SecretKey: v.GetString("store.secret_key"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ReviewerTo:  v.GetString("email.reviewer_to"),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}

	if cfg.Upload.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("upload.max_file_size_mb must be positive")
	}

	return cfg, nil
}
