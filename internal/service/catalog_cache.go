package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const (
	catalogVersionKey = "catalog:list:version"
	catalogPageKey    = "catalog:list:v%s:c=%s:s=%s:p=%d:l=%d"
)

// ListCache 商品列表缓存；写操作只递增版本号，旧版本的 key 随 TTL 过期
type ListCache struct {
	redis radix.Client
	ttl   time.Duration
}

// NewListCache redis 为 nil 时返回 nil，CatalogService 会跳过缓存
func NewListCache(redis radix.Client, ttl time.Duration) *ListCache {
	if redis == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ListCache{redis: redis, ttl: ttl}
}

// Version 当前列表版本；一次查询只读一次，读写缓存都用它
func (c *ListCache) Version(ctx context.Context) (string, error) {
	var v string
	mn := radix.MaybeNil{Rcv: &v}
	if err := c.redis.Do(radix.Cmd(&mn, "GET", catalogVersionKey)); err != nil {
		return "", err
	}
	if mn.Nil || v == "" {
		return "0", nil
	}
	return v, nil
}

func (c *ListCache) key(version string, q ProductQuery) string {
	return fmt.Sprintf(catalogPageKey, version, url.QueryEscape(q.Category), url.QueryEscape(q.SKU), q.Page, q.Limit)
}

// Get 命中时把结果解到 dest
func (c *ListCache) Get(ctx context.Context, ver string, q ProductQuery, dest *ProductPage) (bool, error) {
	var raw string
	mn := radix.MaybeNil{Rcv: &raw}
	if err := c.redis.Do(radix.Cmd(&mn, "GET", c.key(ver, q))); err != nil {
		return false, err
	}
	if mn.Nil || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Set 写入查询开始时读到的版本；期间有写操作时版本已前进，这一页不会再被读到
func (c *ListCache) Set(ctx context.Context, ver string, q ProductQuery, page *ProductPage) error {
	body, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.key(ver, q), int64(c.ttl/time.Second), body))
}

// Invalidate 让所有已缓存的页失效
func (c *ListCache) Invalidate(ctx context.Context) error {
	return c.redis.Do(radix.Cmd(nil, "INCR", catalogVersionKey))
}
