package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
	// permanent 永不过期,用于空地址/新标签页等占位URL
	permanent bool
}

// UrlCache URL去重缓存,滑动过期
// 条目只会被刷新不会因过期而立即删除,清理交给Sweep
type UrlCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// InitUrlCache 创建缓存并播种永久忽略的URL
func InitUrlCache(ttl time.Duration, permanentUrls []string) *UrlCache {
	c := &UrlCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, url := range permanentUrls {
		c.entries[url] = &entry{permanent: true}
	}
	return c
}

// ShouldIgnore 判定URL是否跳过提取
// 首见: 建条目并放行; TTL内复见: 顺延过期时间并跳过; 已过期: 重置过期时间并放行
func (c *UrlCache) ShouldIgnore(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[url]
	if !ok {
		c.entries[url] = &entry{expiresAt: now.Add(c.ttl)}
		return false
	}
	if e.permanent || now.Before(e.expiresAt) {
		if !e.permanent {
			e.expiresAt = now.Add(c.ttl)
		}
		return true
	}
	// 过期条目按首见处理,复用原条目
	e.expiresAt = now.Add(c.ttl)
	return false
}

// Sweep 移除已过期的非永久条目,返回移除数量
// 对ShouldIgnore的可观测行为没有影响:过期条目下次复见本就按首见处理
func (c *UrlCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for url, e := range c.entries {
		if !e.permanent && !now.Before(e.expiresAt) {
			delete(c.entries, url)
			removed++
		}
	}
	return removed
}

// StartSweeper 周期清理,ctx取消后停止
func (c *UrlCache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					log.Printf("缓存清理: 移除%d个过期条目", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *UrlCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
