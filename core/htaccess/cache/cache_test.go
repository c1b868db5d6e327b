package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

func sampleList() *directive.List {
	l := directive.NewList()
	l.Append(&directive.Directive{Kind: directive.HeaderSet, Name: "X", Value: "1"})
	return l
}

func TestCacheMissThenHit(t *testing.T) {
	c := New(4)
	mtime := time.Now()

	_, ok := c.Get("/var/www/.htaccess", mtime)
	assert.False(t, ok)

	c.Put("/var/www/.htaccess", mtime, sampleList())
	got, ok := c.Get("/var/www/.htaccess", mtime)
	assert.True(t, ok)
	assert.Equal(t, 1, got.Len)
}

func TestCacheMtimeMismatchIsMiss(t *testing.T) {
	c := New(4)
	mtime := time.Now()
	c.Put("/var/www/.htaccess", mtime, sampleList())

	_, ok := c.Get("/var/www/.htaccess", mtime.Add(time.Second))
	assert.False(t, ok)
}

func TestCacheGetReturnsIndependentCopy(t *testing.T) {
	c := New(4)
	mtime := time.Now()
	c.Put("/var/www/.htaccess", mtime, sampleList())

	first, _ := c.Get("/var/www/.htaccess", mtime)
	first.Head.Value = "mutated"

	second, _ := c.Get("/var/www/.htaccess", mtime)
	assert.Equal(t, "1", second.Head.Value)
}

func TestCacheInvalidate(t *testing.T) {
	c := New(4)
	mtime := time.Now()
	c.Put("/var/www/.htaccess", mtime, sampleList())
	c.Invalidate("/var/www/.htaccess")

	_, ok := c.Get("/var/www/.htaccess", mtime)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCacheStatsTracksEntries(t *testing.T) {
	c := New(4)
	mtime := time.Now()
	c.Put("/a/.htaccess", mtime, sampleList())
	c.Put("/b/.htaccess", mtime, sampleList())

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Greater(t, stats.TotalBytes, 0)
}
