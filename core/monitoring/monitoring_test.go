package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCountsAndRecent(t *testing.T) {
	r := NewRecorder(4)
	now := time.Now()

	r.Record(Event{Kind: EventCacheHit, Path: "/a/.htaccess", Timestamp: now})
	r.Record(Event{Kind: EventCacheMiss, Path: "/b/.htaccess", Timestamp: now})
	r.Record(Event{Kind: EventCacheHit, Path: "/c/.htaccess", Timestamp: now})

	counts := r.Counts()
	assert.Equal(t, int64(2), counts[EventCacheHit])
	assert.Equal(t, int64(1), counts[EventCacheMiss])
	assert.InDelta(t, 2.0/3.0, r.CacheHitRatio(), 0.0001)
	assert.Len(t, r.Recent(), 3)
}

func TestRingBufferEvictsOldest(t *testing.T) {
	r := NewRecorder(2)
	r.RecordKind(EventCacheHit, "1", "")
	r.RecordKind(EventCacheHit, "2", "")
	r.RecordKind(EventCacheHit, "3", "")

	recent := r.Recent()
	assert.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].Path)
	assert.Equal(t, "3", recent[1].Path)
}

func TestWalkerAdapterTranslatesKind(t *testing.T) {
	r := NewRecorder(4)
	adapter := WalkerAdapter{Recorder: r}
	adapter.Record("cache_hit", "/x/.htaccess", "")

	counts := r.Counts()
	assert.Equal(t, int64(1), counts[EventCacheHit])
}
