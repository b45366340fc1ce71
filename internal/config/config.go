package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Order source identifiers accepted by ORDER_SOURCE.
const (
	SourcePostgres = "postgres"
	SourceSupabase = "supabase"
	SourceAPI      = "api"
	SourceDemo     = "demo"
)

type Config struct {
	// Server
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	CORSOrigins string `mapstructure:"cors_origins"`

	// Orders
	OrderSource  string `mapstructure:"order_source"`
	PageSize     int    `mapstructure:"page_size"`
	RiskDemoSeed int64  `mapstructure:"risk_demo_seed"`

	// Database
	DatabaseURL string `mapstructure:"database_url"`

	// Supabase
	SupabaseURL           string `mapstructure:"supabase_url"`
	SupabaseKey           string `mapstructure:"supabase_key"`
	SupabaseStorageBucket string `mapstructure:"supabase_storage_bucket"`

	// REST order API
	APIBaseURL  string        `mapstructure:"api_base_url"`
	APIMockMode bool          `mapstructure:"api_mock_mode"`
	APITimeout  time.Duration `mapstructure:"api_timeout"`
	APIToken    string        `mapstructure:"api_token"`

	// Redis
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`

	// AI
	AIActiveService   string `mapstructure:"ai_active_service"`
	AISystemPrompt    string `mapstructure:"ai_system_prompt"`
	AIAskSystemPrompt string `mapstructure:"ai_ask_system_prompt"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiAPIURL string `mapstructure:"gemini_api_url"`
	GeminiModel  string `mapstructure:"gemini_model"`

	OpenRouterAPIKey         string `mapstructure:"openrouter_api_key"`
	OpenRouterAPIURL         string `mapstructure:"openrouter_api_url"`
	OpenRouterChatModel      string `mapstructure:"openrouter_chat_model"`
	OpenRouterInstructModel  string `mapstructure:"openrouter_instruct_model"`
	OpenRouterTechnicalModel string `mapstructure:"openrouter_technical_model"`
	OpenRouterSiteURL        string `mapstructure:"openrouter_site_url"`
	OpenRouterAppName        string `mapstructure:"openrouter_app_name"`
}

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// OpenRouter attributes requests to the public URL of this server.
	if cfg.OpenRouterSiteURL == "" {
		cfg.OpenRouterSiteURL = cfg.BaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("cors_origins", "*")

	v.SetDefault("order_source", SourceDemo)
	v.SetDefault("page_size", 10)
	v.SetDefault("risk_demo_seed", 0)

	v.SetDefault("database_url", "")

	v.SetDefault("supabase_url", "")
	v.SetDefault("supabase_key", "")
	v.SetDefault("supabase_storage_bucket", "order-exports")

	v.SetDefault("api_base_url", "")
	v.SetDefault("api_mock_mode", false)
	v.SetDefault("api_timeout", 30*time.Second)
	v.SetDefault("api_token", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_ttl", 5*time.Minute)

	v.SetDefault("ai_active_service", "openRouter")
	v.SetDefault("ai_system_prompt", "")
	v.SetDefault("ai_ask_system_prompt", "")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_api_url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("gemini_model", "gemini-1.5-pro")

	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("openrouter_api_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_chat_model", "google/gemini-pro-1.5-exp-03-25")
	v.SetDefault("openrouter_instruct_model", "google/gemini-flash-1.5")
	v.SetDefault("openrouter_technical_model", "google/gemini-pro-1.5-exp-03-25")
	v.SetDefault("openrouter_site_url", "")
	v.SetDefault("openrouter_app_name", "")
}

// Validate checks the settings required by the selected order source. AI
// provider keys are optional: without them the chat adapter answers in demo
// mode.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}

	switch c.OrderSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for order source %q", c.OrderSource)
		}
	case SourceSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for order source %q", c.OrderSource)
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY is required for order source %q", c.OrderSource)
		}
	case SourceAPI:
		if c.APIBaseURL == "" && !c.APIMockMode {
			return fmt.Errorf("API_BASE_URL is required unless API_MOCK_MODE is set")
		}
	case SourceDemo:
	default:
		return fmt.Errorf("unknown ORDER_SOURCE %q", c.OrderSource)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StorageEnabled reports whether exports can be uploaded to Supabase Storage.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}
