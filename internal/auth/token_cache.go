package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/nabirdeveloper/trusted-brother/internal/config"
)

// TokenCache 缓存 JWT 解析结果，减少每个请求的验签开销
type TokenCache struct {
	redis radix.Client
	ttl   time.Duration
}

// NewTokenCache redis 为 nil 时所有操作都是空操作
func NewTokenCache(redis radix.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{redis: redis, ttl: ttl}
}

func (c *TokenCache) cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return "auth:jwt:" + hex.EncodeToString(sum[:])
}

// Get 尝试命中缓存的 claims，已过期的 claims 视为未命中
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw string
	mn := radix.MaybeNil{Rcv: &raw}
	if err := c.redis.Do(radix.Cmd(&mn, "GET", key)); err != nil {
		return nil, false, err
	}
	if mn.Nil || raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		// 数据损坏，清理后走正常解析
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果，缓存时间不超过 token 剩余有效期
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c == nil || c.redis == nil || claims == nil {
		return nil
	}
	ttl := c.ttl
	if claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left < ttl {
			ttl = left
		}
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.cacheKey(token), secs, body))
}

// Authenticate 先查缓存，未命中再验签并回写
func (c *TokenCache) Authenticate(ctx context.Context, cfg *config.JWTConfig, token string) (*Claims, error) {
	if claims, ok, err := c.Get(ctx, token); err == nil && ok {
		return claims, nil
	}
	claims, err := ParseToken(cfg, token)
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, token, claims)
	return claims, nil
}
