package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return mr, newRedisStore(client, "")
}

func TestRedisStore_PutGet(t *testing.T) {
	mr, s := setupMiniRedis(t)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "currentIndex", []byte(`2`)))

	v, ok, err := s.Get(ctx, "currentIndex")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `2`, string(v))

	raw, err := mr.Get("reel:currentIndex")
	require.NoError(t, err)
	assert.Equal(t, `2`, raw)
	assert.Zero(t, mr.TTL("reel:currentIndex"))
}

func TestRedisStore_Missing(t *testing.T) {
	_, s := setupMiniRedis(t)
	defer s.Close()

	_, ok, err := s.Get(context.Background(), "playlist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Delete(t *testing.T) {
	mr, s := setupMiniRedis(t)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "isShuffling", []byte(`true`)))
	require.NoError(t, s.Delete(ctx, "isShuffling"))
	require.NoError(t, s.Delete(ctx, "isShuffling"))
	assert.False(t, mr.Exists("reel:isShuffling"))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNewRedisStore_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, Save(context.Background(), s, "player_volume", 0.5))
	raw, err := mr.Get("test:player_volume")
	require.NoError(t, err)
	assert.Equal(t, "0.5", raw)
}
