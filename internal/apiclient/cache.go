package apiclient

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultCacheTTL is how long an unused read stays cached when no mutation
// invalidates it first.
const DefaultCacheTTL = 60 * time.Second

// Tag families.
const (
	TagPost       = "Post"
	TagCategory   = "Category"
	TagContact    = "Contact"
	TagNewsletter = "Newsletter"
	TagComment    = "Comment"
)

// Tag labels a cached read. A Tag without ID names a whole family.
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// matches reports whether invalidating t drops a read that provided p.
// A family tag matches every tag of its type; an ID tag only its own ID.
func (t Tag) matches(p Tag) bool {
	return t.Type == p.Type && (t.ID == "" || t.ID == p.ID)
}

type cacheEntry struct {
	data   []byte
	tags   []Tag
	stored time.Time
}

// tagCache stores raw read payloads by query key. Entries leave on
// invalidation or once they are older than ttl; a ttl <= 0 keeps them until
// invalidated.
type tagCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	gen     uint64 // bumped by every invalidation
	clock   clock.Clock
	ttl     time.Duration
}

func newTagCache(clk clock.Clock, ttl time.Duration) *tagCache {
	if clk == nil {
		clk = clock.New()
	}
	return &tagCache{entries: make(map[string]cacheEntry), clock: clk, ttl: ttl}
}

func (tc *tagCache) get(key string) ([]byte, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	e, ok := tc.entries[key]
	if !ok {
		return nil, false
	}
	if tc.ttl > 0 && tc.clock.Since(e.stored) >= tc.ttl {
		delete(tc.entries, key)
		return nil, false
	}
	return e.data, true
}

func (tc *tagCache) generation() uint64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.gen
}

// put stores data unless an invalidation happened since gen was read.
func (tc *tagCache) put(key string, data []byte, tags []Tag, gen uint64) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if gen != tc.gen {
		return false
	}
	tc.entries[key] = cacheEntry{data: data, tags: tags, stored: tc.clock.Now()}
	return true
}

// invalidate drops every entry providing a tag matched by tags and returns
// how many were dropped.
func (tc *tagCache) invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.gen++
	dropped := 0
	for key, e := range tc.entries {
		if anyMatch(tags, e.tags) {
			delete(tc.entries, key)
			dropped++
		}
	}
	return dropped
}

func (tc *tagCache) len() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.entries)
}

func anyMatch(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.matches(p) {
				return true
			}
		}
	}
	return false
}
