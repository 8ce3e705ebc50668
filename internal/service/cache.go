// cache.go — кэш свёртки клиентов.
// Хранит группы aggregate.Fold по владельцу вместе с токеном версии данных.
// Запись действительна, пока токен совпадает; статус клиента в кэш не попадает
// и вычисляется заново на каждом запросе.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/clientportal/internal/domain/aggregate"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cp_aggregate_cache_hits_total",
		Help: "Общее количество попаданий в кэш свёртки клиентов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cp_aggregate_cache_misses_total",
		Help: "Общее количество промахов кэша свёртки клиентов.",
	})
)

type aggregateEntry struct {
	snapshot string
	groups   []*aggregate.Group
}

// AggregateCache — LRU-кэш свёрток с TTL.
// Нулевой размер отключает кэш: каждый Get — промах.
type AggregateCache struct {
	cache *expirable.LRU[string, aggregateEntry]
}

// NewAggregateCache создаёт кэш на maxSize владельцев с временем жизни ttl.
func NewAggregateCache(maxSize int, ttl time.Duration) *AggregateCache {
	if maxSize <= 0 {
		return &AggregateCache{}
	}
	return &AggregateCache{
		cache: expirable.NewLRU[string, aggregateEntry](maxSize, nil, ttl),
	}
}

// Get возвращает свёртку владельца, если она построена для того же snapshot.
func (c *AggregateCache) Get(ownerID, snapshot string) ([]*aggregate.Group, bool) {
	if c == nil || c.cache == nil {
		cacheMissesTotal.Inc()
		return nil, false
	}
	entry, ok := c.cache.Get(ownerID)
	if ok && entry.snapshot == snapshot {
		cacheHitsTotal.Inc()
		return entry.groups, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set сохраняет свёртку владельца для snapshot, вытесняя прежнюю.
func (c *AggregateCache) Set(ownerID, snapshot string, groups []*aggregate.Group) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Add(ownerID, aggregateEntry{snapshot: snapshot, groups: groups})
}

// Invalidate удаляет свёртку владельца.
func (c *AggregateCache) Invalidate(ownerID string) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Remove(ownerID)
}

// Len возвращает число владельцев в кэше.
func (c *AggregateCache) Len() int {
	if c == nil || c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
