package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The cache is keyed per (organization, date), so stale dates have to be
// swept out as new days are written or the map grows for the life of the
// process.
func TestScheduleCache_SetSweepsExpiredEntries(t *testing.T) {
	current := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	cache := newScheduleCache(30*time.Minute, func() time.Time { return current })

	day := ResolvedWorkingDay{IsWorkingDay: true, ExpectedMinutes: 480}
	cache.set(cacheKey("org-1", current), day)
	cache.set(cacheKey("org-2", current), day)
	assert.Len(t, cache.entries, 2)

	// Past the TTL both entries are stale; the next write sweeps them.
	current = current.Add(31 * time.Minute)
	cache.set(cacheKey("org-1", current.AddDate(0, 0, 1)), day)

	assert.Len(t, cache.entries, 1)
	_, ok := cache.get(cacheKey("org-1", current))
	assert.False(t, ok)
	got, ok := cache.get(cacheKey("org-1", current.AddDate(0, 0, 1)))
	assert.True(t, ok)
	assert.Equal(t, day, got)
}
