// Package config loads application configuration from the environment. A
// .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.
type Config struct {
	Env      string
	Port     string
	Language string // language of prompts, flags and summaries ("en" or "th")

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int

	RabbitMQURL string

	CORSOrigins []string
	BodyLimit   string

	Redis           RedisConfig
	RateLimit       RateLimitConfig
	CompletionCache CacheConfig
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v := newViper()

	cfg := Config{
		Env:      v.GetString("APP_ENV"),
		Port:     v.GetString("APP_PORT"),
		Language: strings.ToLower(v.GetString("APP_LANGUAGE")),

		OpenAIKey:     v.GetString("OPENAI_API_KEY"),
		OpenAIModel:   v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		OpenAITimeout: v.GetDuration("OPENAI_TIMEOUT"),

		DBUser: v.GetString("DB_USER"),
		DBPass: v.GetString("DB_PASS"),
		DBHost: v.GetString("DB_HOST"),
		DBPort: v.GetString("DB_PORT"),
		DBName: v.GetString("DB_NAME"),

		JWTSecret:      v.GetString("JWT_SECRET"),
		AccessTTLMin:   v.GetInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: v.GetInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),

		RabbitMQURL: firstNonEmpty(v.GetString("RABBITMQ_URL"), v.GetString("AMQP_URL")),

		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		BodyLimit:   v.GetString("BODY_LIMIT"),

		Redis:           loadRedisConfig(v),
		RateLimit:       loadRateLimitConfig(v),
		CompletionCache: loadCacheConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("APP_LANGUAGE", "th")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TIMEOUT", "60s")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 15)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 7)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT", "1M")
	setRedisDefaults(v)
	setRateLimitDefaults(v)
	setCacheDefaults(v)
	return v
}

// Validate checks the configuration for combinations that cannot work.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.Language != "en" && c.Language != "th" {
		return fmt.Errorf("APP_LANGUAGE must be \"en\" or \"th\", got %q", c.Language)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB)
	}
	if c.DatabaseEnabled() {
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_USER and DB_NAME are required when DB_HOST is set")
		}
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when the account database is enabled")
		}
		if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
			return errors.New("token TTLs must be positive")
		}
		if c.BcryptCost < 4 || c.BcryptCost > 31 {
			return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
		}
	}
	return nil
}

// IsDev reports whether the application runs in development mode.
func (c Config) IsDev() bool { return c.Env == "development" || c.Env == "dev" }

// DatabaseEnabled reports whether account and history storage is configured.
func (c Config) DatabaseEnabled() bool { return c.DBHost != "" }

// MessagingEnabled reports whether analysis events should be published.
func (c Config) MessagingEnabled() bool { return c.RabbitMQURL != "" }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
