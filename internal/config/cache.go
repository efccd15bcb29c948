package config

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig defines settings for the completion cache. Identical prompts
// sent within TTL are answered from Redis instead of the completion service.
// When Enabled is false or no Redis client is available, caching is off.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

func setCacheDefaults(v *viper.Viper) {
	v.SetDefault("COMPLETION_CACHE_ENABLED", true)
	v.SetDefault("COMPLETION_CACHE_TTL", "30m")
	v.SetDefault("COMPLETION_CACHE_PREFIX", "completion")
}

func loadCacheConfig(v *viper.Viper) CacheConfig {
	return CacheConfig{
		Enabled: v.GetBool("COMPLETION_CACHE_ENABLED"),
		TTL:     v.GetDuration("COMPLETION_CACHE_TTL"),
		Prefix:  v.GetString("COMPLETION_CACHE_PREFIX"),
	}
}
