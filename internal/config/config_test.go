package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("APP_LANGUAGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.Language != "th" {
		t.Errorf("expected default language th, got %s", cfg.Language)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.OpenAITimeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %s", cfg.OpenAITimeout)
	}
	if cfg.DatabaseEnabled() {
		t.Error("database should be disabled without DB_HOST")
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Capacity != 20 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if !cfg.CompletionCache.Enabled || cfg.CompletionCache.TTL != 30*time.Minute {
		t.Errorf("unexpected cache defaults: %+v", cfg.CompletionCache)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_LANGUAGE", "EN")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Language != "en" || cfg.OpenAIKey != "sk-test" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limit should be disabled")
	}
	if !cfg.MessagingEnabled() {
		t.Error("AMQP_URL should enable messaging")
	}
}

func TestLoad_DatabaseRequiresSecret(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "health")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.DatabaseEnabled() || cfg.BcryptCost != 12 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestValidate_Language(t *testing.T) {
	cfg := Config{Port: "1", Language: "fr"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestRateLimitConfig_Normalized(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: time.Second}.normalized()
	if c.Capacity != 1 || c.RefillTokens != 1 || c.RefillInterval != time.Second {
		t.Errorf("unexpected clamp: %+v", c)
	}
	if c.TTL != 5*time.Second {
		t.Errorf("TTL = %s, want 5s", c.TTL)
	}
	if c.Prefix != "rl" {
		t.Errorf("prefix = %q", c.Prefix)
	}
}

func TestLoad_Redis(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_ADDR", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redis.Enabled() {
		t.Errorf("redis should be disabled, address %q", cfg.Redis.Address())
	}

	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redis.Address() != "cache:6380" || cfg.Redis.DB != 2 || !cfg.Redis.TLS {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}

	t.Setenv("REDIS_HOST", "redis")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Redis.Address() != "redis:6379" {
		t.Errorf("REDIS_HOST should win with the default port, got %q", cfg.Redis.Address())
	}
}

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), RedisConfig{})
	if rdb != nil || err != nil {
		t.Fatalf("got %v, %v; want nil, nil", rdb, err)
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil || rdb != nil {
		t.Fatalf("expected ping error, got client %v err %v", rdb, err)
	}
}

func TestValidate_RedisDB(t *testing.T) {
	cfg := Config{Port: "1", Language: "en", Redis: RedisConfig{DB: -1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative REDIS_DB")
	}
}

func TestConfig_IsDev(t *testing.T) {
	for env, want := range map[string]bool{"development": true, "dev": true, "production": false, "": false} {
		if got := (Config{Env: env}).IsDev(); got != want {
			t.Errorf("IsDev(%q) = %v, want %v", env, got, want)
		}
	}
}
