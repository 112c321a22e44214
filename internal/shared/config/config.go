package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLM providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds application configuration.
type Config struct {
	Port                   string
	Env                    string
	CORSAllowOrigin        []string
	DatabaseURL            string
	RedisURL               string
	AutoMigrate            bool
	LLMProvider            string
	LLMModel               string
	OpenAIAPIKey           string
	GeminiAPIKey           string
	LLMTimeout             time.Duration
	ToolTimeout            time.Duration
	ClarificationThreshold float64
	LogFormat              string
	LogLevel               string
	OTelEnabled            bool
}

// Load reads .env files, an optional resume-agent.yaml in the working
// directory and the environment, in increasing precedence.
func Load() (Config, error) {
	return load(viper.New(), "")
}

// LoadFile is Load with an explicit config file that must exist.
func LoadFile(path string) (Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, file string) (Config, error) {
	loadEnvFiles(".env", "cmd/.env")
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("resume-agent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Port:                   v.GetString("port"),
		Env:                    normalizeEnv(v.GetString("env")),
		CORSAllowOrigin:        splitAndTrim(v.GetString("cors_allow_origins")),
		DatabaseURL:            strings.TrimSpace(v.GetString("database_url")),
		RedisURL:               strings.TrimSpace(v.GetString("redis_url")),
		AutoMigrate:            v.GetBool("auto_migrate"),
		LLMProvider:            normalizeProvider(v.GetString("llm_provider")),
		LLMModel:               strings.TrimSpace(v.GetString("llm_model")),
		OpenAIAPIKey:           strings.TrimSpace(v.GetString("openai_api_key")),
		GeminiAPIKey:           strings.TrimSpace(v.GetString("gemini_api_key")),
		LLMTimeout:             v.GetDuration("llm_timeout"),
		ToolTimeout:            v.GetDuration("tool_timeout"),
		ClarificationThreshold: v.GetFloat64("clarification_threshold"),
		LogFormat:              strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		LogLevel:               strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		OTelEnabled:            v.GetBool("otel_enabled"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("llm_provider", ProviderNone)
	v.SetDefault("llm_timeout", "15s")
	v.SetDefault("tool_timeout", "20s")
	v.SetDefault("clarification_threshold", 0.5)
	v.SetDefault("log_format", "json")
	v.SetDefault("log_level", "info")
	v.SetDefault("otel_enabled", false)
}

func (c Config) validate() error {
	switch {
	case c.ClarificationThreshold <= 0 || c.ClarificationThreshold > 1:
		return fmt.Errorf("CLARIFICATION_THRESHOLD must be in (0,1], got %v", c.ClarificationThreshold)
	case c.LLMTimeout <= 0 || c.ToolTimeout <= 0:
		return errors.New("LLM_TIMEOUT and TOOL_TIMEOUT must be positive")
	case c.LLMProvider == "":
		return errors.New("LLM_PROVIDER must be one of none, openai, gemini")
	case c.LLMProvider == ProviderOpenAI && c.OpenAIAPIKey == "":
		return errors.New("OPENAI_API_KEY is required for LLM_PROVIDER=openai")
	case c.LLMProvider == ProviderGemini && c.GeminiAPIKey == "":
		return errors.New("GEMINI_API_KEY is required for LLM_PROVIDER=gemini")
	case c.Env == "production" && c.DatabaseURL == "":
		return errors.New("DATABASE_URL is required in production")
	}
	return nil
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "off":
		return ProviderNone
	case "openai":
		return ProviderOpenAI
	case "gemini", "google":
		return ProviderGemini
	default:
		return ""
	}
}
