package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Through serves key from the cache, or calls load and stores its result for
// ttl seconds in the background. Load errors are returned as is and nothing
// is cached for them.
func Through[T any](ctx context.Context, c RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var cached T

	if err := c.Get(ctx, key, &cached); err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	go func() {
		if err := c.Save(context.WithoutCancel(ctx), key, value, ttl); err != nil {
			log.Warn().Err(err).Str("cacheKey", key).Msg("failed to fill cache")
		}
	}()

	return value, nil
}
