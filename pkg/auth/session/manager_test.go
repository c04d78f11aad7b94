package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	redisclient "github.com/storefrontlabs/storefront-backend/pkg/redis"
)

func newManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	manager, err := NewManager(redisclient.NewFromRedis(raw), config.JWTConfig{ExpirationMinutes: 30})
	require.NoError(t, err)
	return manager, mr
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	manager, mr := newManager(t)

	accessID, err := manager.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, accessID)

	key := "sf:session:access:" + accessID
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored)
	assert.Equal(t, 30*time.Minute, mr.TTL(key))

	ok, err := manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, manager.Revoke(ctx, accessID))
	ok, err = manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, manager.Revoke(ctx, accessID), "revoking twice is harmless")
}

func TestManagerSessionExpires(t *testing.T) {
	ctx := context.Background()
	manager, mr := newManager(t)

	accessID, err := manager.Create(ctx, "user-2")
	require.NoError(t, err)

	mr.FastForward(manager.TTL() + time.Second)
	ok, err := manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerValidation(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)

	_, err := manager.Create(ctx, " ")
	assert.Error(t, err)
	_, err = manager.HasSession(ctx, "")
	assert.Error(t, err)
	assert.Error(t, manager.Revoke(ctx, ""))

	_, err = NewManager(nil, config.JWTConfig{ExpirationMinutes: 1})
	assert.Error(t, err)
	_, err = NewManager(&redisclient.Client{}, config.JWTConfig{})
	assert.Error(t, err)
}
