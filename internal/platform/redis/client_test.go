package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/platform/config"
)

func TestOptions(t *testing.T) {
	t.Run("overrides apply on top of the url", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{
			URL:         "redis://:secret@cache.internal:6380/2",
			PoolSize:    25,
			DialTimeout: 2 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 25, opts.PoolSize)
		assert.Equal(t, 2*time.Second, opts.DialTimeout)
		assert.Equal(t, "usersearch", opts.ClientName)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := Options(config.RedisConfig{})
		assert.Error(t, err)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := Options(config.RedisConfig{URL: "memcached://nope"})
		assert.Error(t, err)
	})
}
