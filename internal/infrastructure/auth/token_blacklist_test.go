package auth_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velux/backend/internal/infrastructure/auth"
)

// revocationContract runs the behaviour every blacklist must share
func revocationContract(t *testing.T, blacklist auth.TokenBlacklist) {
	ctx := context.Background()

	t.Run("revoked jti is reported until it expires", func(t *testing.T) {
		jti := uuid.NewString()
		require.NoError(t, blacklist.AddToBlacklist(ctx, jti, 50*time.Millisecond))

		revoked, err := blacklist.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked)

		assert.Eventually(t, func() bool {
			revoked, err := blacklist.IsBlacklisted(ctx, jti)
			return err == nil && !revoked
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("unknown jti", func(t *testing.T) {
		revoked, err := blacklist.IsBlacklisted(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("non-positive ttl is a no-op", func(t *testing.T) {
		jti := uuid.NewString()
		require.NoError(t, blacklist.AddToBlacklist(ctx, jti, 0))
		require.NoError(t, blacklist.AddToBlacklist(ctx, jti, -time.Minute))

		revoked, err := blacklist.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("rotated refresh tokens stay independent", func(t *testing.T) {
		old, fresh := uuid.NewString(), uuid.NewString()
		require.NoError(t, blacklist.AddToBlacklist(ctx, old, time.Hour))

		revoked, err := blacklist.IsBlacklisted(ctx, fresh)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	revocationContract(t, auth.NewInMemoryTokenBlacklist())
}

func TestRedisTokenBlacklist(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	revocationContract(t, auth.NewRedisTokenBlacklist(client))
}

func TestNewTokenBlacklist(t *testing.T) {
	assert.IsType(t, &auth.InMemoryTokenBlacklist{}, auth.NewTokenBlacklist(nil))

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })
	assert.IsType(t, &auth.RedisTokenBlacklist{}, auth.NewTokenBlacklist(client))
}
