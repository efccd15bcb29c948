package config

// Redis backs the rate limiter and the completion cache. Both degrade to
// pass-through when no client is available, so a failed connection at
// startup is reported but not fatal.

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// RedisConfig locates the Redis server. Keys:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (used when REDIS_HOST is not set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS
type RedisConfig struct {
	Host     string
	Port     string
	Addr     string
	Password string
	DB       int
	TLS      bool
}

func setRedisDefaults(v *viper.Viper) {
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TLS", false)
}

func loadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetString("REDIS_PORT"),
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TLS:      v.GetBool("REDIS_TLS"),
	}
}

// Address returns host:port, or "" when Redis is not configured.
func (c RedisConfig) Address() string {
	if c.Host != "" {
		port := c.Port
		if port == "" {
			port = "6379"
		}
		return c.Host + ":" + port
	}
	return c.Addr
}

// Enabled reports whether a Redis server is configured.
func (c RedisConfig) Enabled() bool { return c.Address() != "" }

// NewRedisClient connects to the configured server. When Redis is not
// configured it returns (nil, nil).
func NewRedisClient(ctx context.Context, c RedisConfig) (*redis.Client, error) {
	addr := c.Address()
	if addr == "" {
		return nil, nil
	}
	var tlsConf *tls.Config
	if c.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  c.Password,
		DB:        c.DB,
		TLSConfig: tlsConf,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
