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
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminTokenHash    string `mapstructure:"ADMIN_TOKEN_HASH"` // bcrypt hash of the admin token
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation and scheduling policy.
	SessionTTLMin      int    `mapstructure:"SESSION_TTL_MIN"`
	DefaultTimezone    string `mapstructure:"DEFAULT_TIMEZONE"`
	BusinessOpenHour   int    `mapstructure:"BUSINESS_OPEN_HOUR"`
	BusinessCloseHour  int    `mapstructure:"BUSINESS_CLOSE_HOUR"`
	SlotIntervalMin    int    `mapstructure:"SLOT_INTERVAL_MIN"`
	DefaultDurationMin int    `mapstructure:"DEFAULT_DURATION_MIN"`
	MaxDurationMin     int    `mapstructure:"MAX_DURATION_MIN"`
	ReminderLeadMin    int    `mapstructure:"REMINDER_LEAD_MIN"`

	// Gemini API key for the chat fallback.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
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
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SESSION_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SESSION_TTL_MIN", 30)
	viper.SetDefault("DEFAULT_TIMEZONE", "UTC")
	viper.SetDefault("BUSINESS_OPEN_HOUR", 9)
	viper.SetDefault("BUSINESS_CLOSE_HOUR", 17)
	viper.SetDefault("SLOT_INTERVAL_MIN", 30)
	viper.SetDefault("DEFAULT_DURATION_MIN", 30)
	viper.SetDefault("MAX_DURATION_MIN", 240)
	viper.SetDefault("REMINDER_LEAD_MIN", 60)
	viper.SetDefault("GEMINI_API_KEY", "")

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
