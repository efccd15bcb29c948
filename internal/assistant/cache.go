package assistant

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheOptions controls the completion cache.
type CacheOptions struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// Cached stores answers in Redis keyed by the model and the full prompt.
// Redis failures never fail a request; the wrapped completer is used instead.
type Cached struct {
	next   Completer
	rdb    *redis.Client
	model  string
	opts   CacheOptions
	logger zerolog.Logger
}

// NewCached wraps next. When caching is disabled or rdb is nil, next is
// returned unchanged.
func NewCached(next Completer, rdb *redis.Client, model string, opts CacheOptions, logger zerolog.Logger) Completer {
	if !opts.Enabled || rdb == nil {
		return next
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.Prefix == "" {
		opts.Prefix = "completion"
	}
	return &Cached{next: next, rdb: rdb, model: model, opts: opts, logger: logger}
}

// Complete returns a cached answer when one exists, otherwise asks the
// wrapped completer and stores a successful answer.
func (c *Cached) Complete(ctx context.Context, p Prompt) (string, error) {
	key := cacheKey(c.opts.Prefix, c.model, p)
	if s, err := c.rdb.Get(ctx, key).Result(); err == nil && s != "" {
		return s, nil
	} else if err != nil && err != redis.Nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("completion cache read failed")
	}

	answer, err := c.next.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(context.WithoutCancel(ctx), key, answer, c.opts.TTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("completion cache write failed")
	}
	return answer, nil
}

func cacheKey(prefix, model string, p Prompt) string {
	sum := sha1.Sum([]byte(model + "\x00" + p.System + "\x00" + p.User))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}
