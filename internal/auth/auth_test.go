package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/redis/redistest"
)

func TestToken_RoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", TTL: time.Hour}

	token, err := GenerateToken(cfg, "u-1", user.RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseToken(cfg, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, claims.IsAdmin())

	_, err = ParseToken(&config.JWTConfig{Secret: "other"}, token)
	assert.Error(t, err)

	_, err = ParseToken(cfg, "")
	assert.Error(t, err)
}

func TestToken_DefaultTTL(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", TTL: -time.Minute}
	// 非正 TTL 回落到默认值
	token, err := GenerateToken(cfg, "u-1", user.RoleUser)
	require.NoError(t, err)
	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
}

func TestTokenCache_Authenticate(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret", TTL: time.Hour}
	token, err := GenerateToken(cfg, "u-7", user.RoleUser)
	require.NoError(t, err)

	client, store := redistest.New()
	cache := NewTokenCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	claims, err := cache.Authenticate(ctx, cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.UserID)
	assert.Equal(t, 1, store.Len())

	cached, ok, err := cache.Get(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u-7", cached.UserID)
	assert.Equal(t, user.RoleUser, cached.Role)

	_, err = cache.Authenticate(ctx, cfg, "garbage")
	assert.Error(t, err)
}

func TestTokenCache_NilRedis(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "s3cret"}
	token, err := GenerateToken(cfg, "u-1", user.RoleUser)
	require.NoError(t, err)

	var cache *TokenCache
	claims, err := cache.Authenticate(context.Background(), cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}
