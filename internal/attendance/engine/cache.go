package engine

import (
	"strings"
	"sync"
	"time"
)

// scheduleCache is a TTL-bounded read-through cache for resolved working
// days. The clock is injected so tests can advance time without sleeping.
// Writes replace the whole entry under the lock; there is no
// read-modify-write path to lose updates on.
type scheduleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]scheduleCacheEntry
}

type scheduleCacheEntry struct {
	day       ResolvedWorkingDay
	expiresAt time.Time
}

func newScheduleCache(ttl time.Duration, now func() time.Time) *scheduleCache {
	return &scheduleCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]scheduleCacheEntry),
	}
}

func cacheKey(organizationID string, date time.Time) string {
	return organizationID + "|" + date.Format("2006-01-02")
}

func (c *scheduleCache) get(key string) (ResolvedWorkingDay, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return ResolvedWorkingDay{}, false
	}
	return entry.day, true
}

// set stores a resolved day and sweeps out expired entries while holding
// the lock. Keys are date-qualified, so without the sweep the map would
// gain an entry per (organization, day) for the life of the process.
func (c *scheduleCache) set(key string, day ResolvedWorkingDay) {
	now := c.now()
	c.mu.Lock()
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = scheduleCacheEntry{day: day, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
}

// invalidateOrganization drops every cached date for one organization.
func (c *scheduleCache) invalidateOrganization(organizationID string) {
	prefix := organizationID + "|"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
