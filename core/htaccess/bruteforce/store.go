// Package bruteforce tracks per-IP failed-attempt counts for the
// BruteForceProtection directive family and decides whether a request
// should be blocked, throttled, or allowed through.
package bruteforce

import (
	"strings"
	"sync"
	"time"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

// Defaults mirror the reference policy when a site enables protection
// without tuning every knob.
const (
	DefaultAllowedAttempts = 10
	DefaultWindowSeconds   = 300
	DefaultThrottleMs      = 1000
)

// MaxTrackedIPs bounds the store's memory footprint; once full, the record
// inserted earliest is evicted to make room for a new IP.
const MaxTrackedIPs = 10000

// Verdict is the outcome of evaluating a request against the store.
type Verdict int

const (
	Allow Verdict = iota
	Block
	Throttle
)

// Record is one IP's current attempt-tracking state.
type Record struct {
	IP            string
	AttemptCount  int
	FirstAttempt  time.Time
	insertionSeq  int64
}

// Store is a concurrency-safe per-IP attempt tracker. A zero Store is not
// usable; construct with NewStore.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	seq     int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Config is the resolved brute-force configuration for one request,
// collected by scanning a merged directive list.
type Config struct {
	Enabled         bool
	AllowedAttempts int
	WindowSeconds   int
	Action          directive.BFAction
	ThrottleMs      int
	UseXFF          bool
	Whitelist       []htregex.CIDR
	ProtectPaths    []string
}

// ResolveConfig scans a merged directive list for the BruteForce* family and
// returns the effective configuration. Unset numeric fields fall back to the
// package defaults, matching the reference executor's behavior.
func ResolveConfig(list *directive.List) Config {
	cfg := Config{
		AllowedAttempts: DefaultAllowedAttempts,
		WindowSeconds:   DefaultWindowSeconds,
		ThrottleMs:      DefaultThrottleMs,
	}
	if list == nil {
		return cfg
	}
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.BruteForceProtection:
			cfg.Enabled = d.Payload.BFEnabled
		case directive.BruteForceAllowedAttempts:
			cfg.AllowedAttempts = d.Payload.BFAllowedAttempts
		case directive.BruteForceWindow:
			cfg.WindowSeconds = d.Payload.BFWindowSec
		case directive.BruteForceAction:
			cfg.Action = d.Payload.BFAction
		case directive.BruteForceThrottleDuration:
			cfg.ThrottleMs = d.Payload.BFThrottleMs
		case directive.BruteForceXForwardedFor:
			cfg.UseXFF = d.Payload.BFEnabled
		case directive.BruteForceWhitelist:
			cfg.Whitelist = append(cfg.Whitelist, htregex.ParseList(d.Value)...)
		case directive.BruteForceProtectPath:
			cfg.ProtectPaths = append(cfg.ProtectPaths, d.Value)
		}
	}
	return cfg
}

// EffectiveIP resolves the client IP to evaluate: the leftmost X-Forwarded-For
// hop when UseXFF is set and the header is present, otherwise remoteAddr.
func (cfg Config) EffectiveIP(remoteAddr, xForwardedFor string) string {
	if cfg.UseXFF && xForwardedFor != "" {
		if ip := htregex.LeftmostIP(xForwardedFor); ip != "" {
			return ip
		}
	}
	return remoteAddr
}

// IsProtected reports whether uri falls under one of cfg's protect paths. No
// protect paths configured means every path is protected.
func (cfg Config) IsProtected(uri string) bool {
	if len(cfg.ProtectPaths) == 0 {
		return true
	}
	for _, p := range cfg.ProtectPaths {
		if strings.HasPrefix(uri, p) {
			return true
		}
	}
	return false
}

// Evaluate records one attempt for ip against cfg and returns the verdict
// plus, for Throttle, the configured delay. IPs in cfg.Whitelist are allowed
// without being recorded. Requests outside the protected path set must be
// filtered by the caller before calling Evaluate, using Config.IsProtected.
func (s *Store) Evaluate(ip string, cfg Config, now time.Time) (Verdict, int) {
	if !cfg.Enabled {
		return Allow, 0
	}
	if htregex.AnyContains(cfg.Whitelist, ip) {
		return Allow, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[ip]
	if !ok {
		s.insert(ip, now)
		return Allow, 0
	}

	if now.Sub(rec.FirstAttempt) >= time.Duration(cfg.WindowSeconds)*time.Second {
		rec.AttemptCount = 1
		rec.FirstAttempt = now
		return Allow, 0
	}

	if rec.AttemptCount >= cfg.AllowedAttempts {
		if cfg.Action == directive.ActionBlock {
			return Block, 0
		}
		return Throttle, cfg.ThrottleMs
	}

	rec.AttemptCount++
	return Allow, 0
}

// insert adds a new record for ip, evicting the oldest tracked IP first if
// the store is at capacity. Caller must hold s.mu.
func (s *Store) insert(ip string, now time.Time) {
	if len(s.records) >= MaxTrackedIPs {
		s.evictOldestLocked()
	}
	s.seq++
	s.records[ip] = &Record{
		IP:           ip,
		AttemptCount: 1,
		FirstAttempt: now,
		insertionSeq: s.seq,
	}
}

func (s *Store) evictOldestLocked() {
	var oldestIP string
	var oldestSeq int64 = -1
	for ip, rec := range s.records {
		if oldestSeq == -1 || rec.insertionSeq < oldestSeq {
			oldestSeq = rec.insertionSeq
			oldestIP = ip
		}
	}
	if oldestIP != "" {
		delete(s.records, oldestIP)
	}
}

// Len reports the number of currently tracked IPs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of the current record for ip, for diagnostics.
func (s *Store) Snapshot(ip string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[ip]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}
