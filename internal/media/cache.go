package media

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheKey struct {
	userID uint64
	query  string
}

// ListCache holds list query results per user until the user's next upload
// or until ttl passes. A nil *ListCache is a valid, always-missing cache.
// Invalidate bumps a per-user generation; rows loaded under an older
// generation are dropped instead of cached.
type ListCache struct {
	lru *expirable.LRU[cacheKey, []Record]

	mu   sync.Mutex
	gens map[uint64]uint64
}

func NewListCache(size int, ttl time.Duration) *ListCache {
	if size <= 0 {
		return nil
	}
	return &ListCache{lru: expirable.NewLRU[cacheKey, []Record](size, nil, ttl), gens: map[uint64]uint64{}}
}

func (c *ListCache) get(userID uint64, query string) ([]Record, bool) {
	if c == nil {
		return nil, false
	}
	rows, ok := c.lru.Get(cacheKey{userID: userID, query: query})
	if !ok {
		return nil, false
	}
	return cloneRecords(rows), true
}

// generation must be read before loading the rows later handed to put.
func (c *ListCache) generation(userID uint64) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

// put stores rows only if userID was not invalidated since gen was read.
func (c *ListCache) put(userID uint64, query string, gen uint64, rows []Record) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return
	}
	c.lru.Add(cacheKey{userID: userID, query: query}, cloneRecords(rows))
}

// Invalidate drops every cached list belonging to userID.
func (c *ListCache) Invalidate(userID uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	for _, k := range c.lru.Keys() {
		if k.userID == userID {
			c.lru.Remove(k)
		}
	}
}

func cloneRecords(rows []Record) []Record {
	out := make([]Record, len(rows))
	copy(out, rows)
	return out
}
