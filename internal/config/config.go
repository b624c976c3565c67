/**
 * @description
 * This package handles configuration management for the finance memory service.
 * It uses Viper to read settings from environment variables, with an optional
 * .env file for local development, and applies sane defaults.
 *
 * @dependencies
 * - github.com/spf13/viper: configuration loading and env binding.
 */

package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Store backends the service can be statically configured with.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds all configuration variables for the memory service.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	MemoryEventExchange string `mapstructure:"MEMORY_EVENT_EXCHANGE"`

	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`

	GroqAPIBaseURL      string  `mapstructure:"GROQ_API_BASE_URL"`
	GroqAPIKey          string  `mapstructure:"GROQ_API_KEY"`
	AnalysisModel       string  `mapstructure:"ANALYSIS_MODEL"`
	AnalysisTemperature float64 `mapstructure:"ANALYSIS_TEMPERATURE"`

	GeminiAPIBaseURL string `mapstructure:"GEMINI_API_BASE_URL"`
	GoogleAPIKey     string `mapstructure:"GOOGLE_API_KEY"`
	SuggestionsModel string `mapstructure:"SUGGESTIONS_MODEL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	MemoryBuildRateLimitPerMinute int `mapstructure:"MEMORY_BUILD_RATE_LIMIT_PER_MINUTE"`
	SuggestionsRateLimitPerMinute int `mapstructure:"SUGGESTIONS_RATE_LIMIT_PER_MINUTE"`

	MemoryRefreshSchedule    string `mapstructure:"MEMORY_REFRESH_SCHEDULE"`
	MemoryRefreshMaxAgeHours int    `mapstructure:"MEMORY_REFRESH_MAX_AGE_HOURS"`
}

// LoadConfig reads configuration from environment variables and an optional
// .env file in the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("STORE_BACKEND", StoreBackendPostgres)
	viper.SetDefault("MEMORY_EVENT_EXCHANGE", "finance.events")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "finagent:rate_limit")
	viper.SetDefault("GROQ_API_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("ANALYSIS_MODEL", "llama-3.1-8b-instant")
	viper.SetDefault("ANALYSIS_TEMPERATURE", 0.4)
	viper.SetDefault("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("SUGGESTIONS_MODEL", "gemini-2.5-flash")
	viper.SetDefault("MEMORY_BUILD_RATE_LIMIT_PER_MINUTE", 6)
	viper.SetDefault("SUGGESTIONS_RATE_LIMIT_PER_MINUTE", 20)
	viper.SetDefault("MEMORY_REFRESH_MAX_AGE_HOURS", 168)

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("STORE_BACKEND")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("MEMORY_EVENT_EXCHANGE")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("GROQ_API_BASE_URL")
	_ = viper.BindEnv("GROQ_API_KEY")
	_ = viper.BindEnv("ANALYSIS_MODEL")
	_ = viper.BindEnv("ANALYSIS_TEMPERATURE")
	_ = viper.BindEnv("GEMINI_API_BASE_URL")
	_ = viper.BindEnv("GOOGLE_API_KEY")
	_ = viper.BindEnv("SUGGESTIONS_MODEL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("MEMORY_BUILD_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("SUGGESTIONS_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("MEMORY_REFRESH_SCHEDULE")
	_ = viper.BindEnv("MEMORY_REFRESH_MAX_AGE_HOURS")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(viper.GetString("PORT")); port != "" {
		config.ServerPort = port
	}

	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))
	switch config.StoreBackend {
	case StoreBackendPostgres, StoreBackendMemory:
	case "":
		config.StoreBackend = StoreBackendPostgres
	default:
		err = fmt.Errorf("unsupported STORE_BACKEND %q (expected %q or %q)",
			config.StoreBackend, StoreBackendPostgres, StoreBackendMemory)
		return
	}

	if config.AnalysisTemperature < 0 || config.AnalysisTemperature > 2 {
		log.Printf("level=warn component=config msg=\"analysis temperature out of range; using default\" value=%f", config.AnalysisTemperature)
		config.AnalysisTemperature = 0.4
	}
	if config.MemoryBuildRateLimitPerMinute < 0 {
		config.MemoryBuildRateLimitPerMinute = 0
	}
	if config.SuggestionsRateLimitPerMinute < 0 {
		config.SuggestionsRateLimitPerMinute = 0
	}
	if config.MemoryRefreshMaxAgeHours <= 0 {
		config.MemoryRefreshMaxAgeHours = 168
	}

	return
}
