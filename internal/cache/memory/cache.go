package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yurieos/yurie-search/internal/cache"
)

type item struct {
	value    interface{}
	storedAt time.Time
	ttl      time.Duration
}

// Cache - in-memory кеш с TTL. Фоновая чистка только возвращает память,
// корректность обеспечивает проверка срока в Get.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]item
	stopChan chan struct{}
	stopped  bool
}

func New() *Cache {
	return NewWithContext(context.Background())
}

func NewWithContext(ctx context.Context) *Cache {
	c := &Cache{
		items:    make(map[string]item),
		stopChan: make(chan struct{}),
	}
	go c.cleanup(ctx)
	return c
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Since(it.storedAt) > it.ttl {
		return nil, false
	}
	return it.value, true
}

func (c *Cache) GetEntry(key string) (cache.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok {
		return cache.Entry{}, false
	}
	return cache.Entry{Value: it.value, StoredAt: it.storedAt, TTL: it.ttl}, true
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = item{value: value, storedAt: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

// cleanup чистит просроченные записи раз в 5 минут
// XXX: интервал захардкожен, может стоит вынести в конфиг
func (c *Cache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, it := range c.items {
		if now.Sub(it.storedAt) > it.ttl {
			delete(c.items, k)
		}
	}
}
