// Package cache provides a parse cache for .htaccess files keyed by absolute
// path, invalidated by modification time. Hits return a deep copy so callers
// can never mutate the cached original.
package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// MaxEntryBytes bounds the advisory size accounting per entry. It is never
// enforced as a hard cap — entries larger than this are still cached, but
// Stats() surfaces the overage so an operator can notice oversized .htaccess
// files.
const MaxEntryBytes = 2048

type entry struct {
	path       string
	mtime      time.Time
	directives *directive.List
	byteUsage  int
	next       *entry
}

// Cache is a chained hash table of parsed .htaccess files.
type Cache struct {
	mu      sync.RWMutex
	buckets []*entry
	count   int
}

// New returns a cache with the given number of buckets.
func New(buckets int) *Cache {
	if buckets <= 0 {
		buckets = 64
	}
	return &Cache{buckets: make([]*entry, buckets)}
}

func bucketFor(path string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(path))
	return int(h.Sum32()) % n
}

// Get returns the cached directives for path if present and mtime matches
// exactly. On a hit, the returned list is an independent deep copy.
func (c *Cache) Get(path string, mtime time.Time) (*directive.List, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := bucketFor(path, len(c.buckets))
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.path == path {
			if !e.mtime.Equal(mtime) {
				return nil, false
			}
			return e.directives.Clone(), true
		}
	}
	return nil, false
}

// Put stores directives for path, replacing any existing entry. The cache
// takes no ownership assumptions beyond what's needed to serve future Get
// calls with independent copies — it clones on the way in too, so later
// mutation of the caller's list never corrupts the cache.
func (c *Cache) Put(path string, mtime time.Time, directives *directive.List) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := bucketFor(path, len(c.buckets))
	owned := directives.Clone()
	usage := estimateBytes(owned)

	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.path == path {
			e.mtime = mtime
			e.directives = owned
			e.byteUsage = usage
			return
		}
	}

	c.buckets[idx] = &entry{
		path:       path,
		mtime:      mtime,
		directives: owned,
		byteUsage:  usage,
		next:       c.buckets[idx],
	}
	c.count++
}

// Invalidate removes the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := bucketFor(path, len(c.buckets))
	var prev *entry
	for e := c.buckets[idx]; e != nil; e = e.next {
		if e.path == path {
			if prev == nil {
				c.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			c.count--
			return
		}
		prev = e
	}
}

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	Entries       int
	TotalBytes    int
	OversizedPath []string
}

// Stats reports entry count, estimated total memory usage, and any entries
// exceeding MaxEntryBytes.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Entries: c.count}
	for _, b := range c.buckets {
		for e := b; e != nil; e = e.next {
			s.TotalBytes += e.byteUsage
			if e.byteUsage > MaxEntryBytes {
				s.OversizedPath = append(s.OversizedPath, e.path)
			}
		}
	}
	return s
}

// estimateBytes gives a rough per-entry memory estimate: fixed overhead per
// directive plus the length of its string fields, recursing into container
// children. It is advisory only — never used to reject a Put.
func estimateBytes(list *directive.List) int {
	if list == nil {
		return 0
	}
	total := 0
	for _, d := range list.Slice() {
		total += 64 // struct/pointer overhead
		total += len(d.Name) + len(d.Value) + len(d.Payload.Pattern) + len(d.Payload.Attribute) + len(d.Payload.Methods)
		if d.Payload.Children != nil {
			total += estimateBytes(d.Payload.Children)
		}
	}
	return total
}
