package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisHistoryDB   int    `mapstructure:"REDIS_HISTORY_DB"`
	RedisSyncQueueDB int    `mapstructure:"REDIS_SYNC_QUEUE_DB"`

	// Gemini API key for the knowledge-base collaborator.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Base URL of the storefront API targeted by remote intent actions.
	StorefrontAPIURL string `mapstructure:"STOREFRONT_API_URL"`

	// Assistant engine tunables.
	HistoryLimit     int `mapstructure:"HISTORY_LIMIT"`
	CatalogTTLMin    int `mapstructure:"CATALOG_TTL_MIN"`
	CatalogPageSize  int `mapstructure:"CATALOG_PAGE_SIZE"`
	RemoteTimeoutSec int `mapstructure:"REMOTE_TIMEOUT_SEC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_HISTORY_DB", 0)
	viper.SetDefault("REDIS_SYNC_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("STOREFRONT_API_URL", "https://ruachestore.com.ng")
	viper.SetDefault("HISTORY_LIMIT", 40)
	viper.SetDefault("CATALOG_TTL_MIN", 5)
	viper.SetDefault("CATALOG_PAGE_SIZE", 200)
	viper.SetDefault("REMOTE_TIMEOUT_SEC", 15)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
