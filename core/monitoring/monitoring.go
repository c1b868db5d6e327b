// Package monitoring tracks aggregate engine behavior — cache hit rate,
// walker warnings, brute-force verdicts, and auth outcomes — in a
// thread-safe circular buffer plus rolling counters, mirroring the
// request-stats collector pattern used for HTTP request metrics.
package monitoring

import (
	"sync"
	"time"
)

// EventKind classifies one recorded engine event.
type EventKind string

const (
	EventCacheHit      EventKind = "cache_hit"
	EventCacheMiss     EventKind = "cache_miss"
	EventParseWarning  EventKind = "parse_warning"
	EventWalkerWarning EventKind = "walker_warning"
	EventAuthFailure   EventKind = "auth_failure"
	EventBruteForce    EventKind = "brute_force_block"
	EventBruteThrottle EventKind = "brute_force_throttle"
	EventRedirect      EventKind = "redirect"
)

// Event is one recorded occurrence. Record keeps the caller's Timestamp as
// given; RecordKind stamps the event with time.Now.
type Event struct {
	Kind      EventKind
	Path      string
	Detail    string
	Timestamp time.Time
}

// ringBuffer is a fixed-capacity, thread-safe circular buffer of events.
type ringBuffer struct {
	mu     sync.RWMutex
	buffer []Event
	size   int
	head   int
	count  int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{buffer: make([]Event, size), size: size}
}

func (b *ringBuffer) add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer[b.head] = e
	b.head = (b.head + 1) % b.size
	if b.count < b.size {
		b.count++
	}
}

func (b *ringBuffer) all() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, b.count)
	for i := 0; i < b.count; i++ {
		pos := (b.size + b.head - b.count + i) % b.size
		out[i] = b.buffer[pos]
	}
	return out
}

// Counters holds the running tally of engine events by kind.
type Counters struct {
	mu     sync.RWMutex
	counts map[EventKind]int64
}

func newCounters() *Counters {
	return &Counters{counts: make(map[EventKind]int64)}
}

func (c *Counters) increment(kind EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[kind]++
}

// Snapshot returns a copy of the current counts, safe to read concurrently
// with further increments.
func (c *Counters) Snapshot() map[EventKind]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[EventKind]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Recorder is the entry point for publishing engine events; the walker
// publishes through WalkerAdapter. Safe for concurrent use across request
// goroutines.
type Recorder struct {
	recent   *ringBuffer
	counters *Counters
}

// NewRecorder returns a Recorder retaining the most recent bufSize events.
func NewRecorder(bufSize int) *Recorder {
	if bufSize <= 0 {
		bufSize = 200
	}
	return &Recorder{recent: newRingBuffer(bufSize), counters: newCounters()}
}

// Record publishes one event: increments its counter and appends it to the
// recent-events ring buffer.
func (r *Recorder) Record(e Event) {
	r.counters.increment(e.Kind)
	r.recent.add(e)
}

// Recent returns the most recently recorded events, oldest first.
func (r *Recorder) Recent() []Event {
	return r.recent.all()
}

// Counts returns a snapshot of event counts by kind.
func (r *Recorder) Counts() map[EventKind]int64 {
	return r.counters.Snapshot()
}

// RecordKind stamps and publishes an event given its kind by name, for
// callers that don't want to build an Event literal directly.
func (r *Recorder) RecordKind(kind EventKind, path, detail string) {
	r.Record(Event{Kind: kind, Path: path, Detail: detail, Timestamp: time.Now()})
}

// WalkerAdapter satisfies walker.EventRecorder, translating its plain-string
// kind names into EventKind values so the walker package never needs to
// import monitoring's types.
type WalkerAdapter struct {
	Recorder *Recorder
}

// Record implements walker.EventRecorder.
func (a WalkerAdapter) Record(kind, path, detail string) {
	a.Recorder.RecordKind(EventKind(kind), path, detail)
}

// CacheHitRatio returns hits / (hits + misses), or 0 if neither has occurred.
func (r *Recorder) CacheHitRatio() float64 {
	counts := r.Counts()
	hits := counts[EventCacheHit]
	misses := counts[EventCacheMiss]
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
