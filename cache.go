package geoclient

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Cached wraps a Geocoder with an in-memory LRU cache keyed on the query
// and the result-shaping call options. Only non-empty results are cached
// so transient "not found" responses can be retried.
func Cached(inner Geocoder, maxEntries int) Geocoder {
	return &cachedGeocoder{inner: inner, cache: newLRUCache(maxEntries)}
}

type cachedGeocoder struct {
	inner Geocoder
	cache *lruCache
}

func (c *cachedGeocoder) Geocode(ctx context.Context, query string, opts *Options) ([]Location, error) {
	key := "fwd:" + query + "|" + optionsKey(opts)
	if locs, ok := c.cache.get(key); ok {
		return locs, nil
	}
	locs, err := c.inner.Geocode(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if len(locs) > 0 {
		c.cache.put(key, locs)
	}
	return locs, nil
}

func (c *cachedGeocoder) Reverse(ctx context.Context, query any, opts *Options) ([]Location, error) {
	// Coerce before building the key so "40.75,-73.98" and the
	// equivalent Point share an entry. Coercion failures pass through to
	// the inner geocoder, which rejects them identically.
	point, err := CoercePoint(query)
	if err != nil {
		return c.inner.Reverse(ctx, query, opts)
	}
	key := "rev:" + point.String() + "|" + optionsKey(opts)
	if locs, ok := c.cache.get(key); ok {
		return locs, nil
	}
	locs, err := c.inner.Reverse(ctx, point, opts)
	if err != nil {
		return nil, err
	}
	if len(locs) > 0 {
		c.cache.put(key, locs)
	}
	return locs, nil
}

// optionsKey renders the result-shaping options deterministically. The
// timeout is excluded: it changes delivery, not content.
func optionsKey(opts *Options) string {
	o := opts.Resolved()
	var b strings.Builder
	b.WriteString(strconv.FormatBool(o.ExactlyOne))
	b.WriteByte('|')
	b.WriteString(o.Language)
	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(o.Filters[k])
	}
	return b.String()
}

// lruCache is a minimal thread-safe LRU for result slices.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []Location
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
