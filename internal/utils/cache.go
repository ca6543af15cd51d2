package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// NewStore 创建 go-cache 实例，清理间隔为 ttl 的两倍
func NewStore(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, 2*ttl)
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// LRUCache 带过期时间的 LRU 缓存
type LRUCache[K comparable, V any] struct {
	storage *lru.Cache[K, CacheItem[V]]
	ttl     time.Duration
	now     func() time.Time
}

// NewLRUCache size 为最大条数，ttl 为数据有效期
func NewLRUCache[K comparable, V any](size int, ttl time.Duration) *LRUCache[K, V] {
	// 仅在 size <= 0 时返回错误
	if size <= 0 {
		size = 1
	}
	c, _ := lru.New[K, CacheItem[V]](size)
	return &LRUCache[K, V]{storage: c, ttl: ttl, now: time.Now}
}

// Set 写入或更新
func (c *LRUCache[K, V]) Set(key K, value V) {
	c.storage.Add(key, CacheItem[V]{Value: value, ExpiredAt: c.now().Add(c.ttl)})
}

// Get 读取，过期的条目会被移除
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	var zero V
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

// Delete 删除
func (c *LRUCache[K, V]) Delete(key K) {
	c.storage.Remove(key)
}
