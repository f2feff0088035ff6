package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Environment string
	Port        string

	// Remote persistence (Postgres DSN preferred, Supabase REST otherwise)
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string

	// Local durable cache (SQLite snapshot file)
	CachePath string

	// JWT
	JWTSecret string

	// Content generation
	AIUseMock      bool
	AITimeout      time.Duration
	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	GeminiKey      string
	GeminiModel    string

	// CORS
	AllowedOrigins []string

	Debug bool
}

// LoadConfig reads .env files (by environment) and then the process
// environment. Real environment variables win over .env entries.
func LoadConfig() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	cfg := &Config{
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		Port:        getEnvWithDefault("PORT", "3000"),
		JWTSecret:   getEnvWithDefault("JWT_SECRET", "change-me-in-production"),
		CachePath:   getEnvWithDefault("CACHE_PATH", "./data/goalspace-cache.db"),
		Debug:       getEnvBool("DEBUG", false),
	}

	// Trim whitespace to avoid trailing newlines from env sources
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	cfg.SupabaseURL = strings.TrimSpace(os.Getenv("SUPABASE_URL"))
	cfg.SupabaseKey = strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_KEY"))

	cfg.AIUseMock = getEnvBool("AI_USE_MOCK", false)
	cfg.AITimeout = time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 120)) * time.Second
	cfg.OpenAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.OpenAIBaseURL = getEnvWithDefault("OPENAI_BASE_URL", "https://api.openai.com")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4o")
	cfg.AnthropicKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.AnthropicModel = getEnvWithDefault("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest")
	cfg.GeminiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.GeminiModel = getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-pro")

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		cfg.AllowedOrigins = []string{"*"}
	} else {
		cfg.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	if cfg.Environment == "production" {
		cfg.Debug = false
	}

	return cfg
}

var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config, loading it once.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks that the configuration is usable at startup.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == "change-me-in-production" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if c.PostgresDSN == "" && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		return fmt.Errorf("database not configured: set POSTGRES_DSN or SUPABASE_URL+SUPABASE_SERVICE_KEY")
	}

	if !c.AIUseMock && c.OpenAIKey == "" && c.AnthropicKey == "" && c.GeminiKey == "" {
		return fmt.Errorf("no AI provider key configured and AI_USE_MOCK is off")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads KEY=VALUE pairs into the environment. Existing
// environment variables are not overwritten.
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
