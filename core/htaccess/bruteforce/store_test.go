package bruteforce

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

func protectionConfig() Config {
	return Config{
		Enabled:         true,
		AllowedAttempts: 3,
		WindowSeconds:   60,
		Action:          directive.ActionBlock,
	}
}

func TestEvaluateAllowsUntilThreshold(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	now := time.Now()

	for i := 0; i < 3; i++ {
		v, _ := s.Evaluate("1.2.3.4", cfg, now)
		assert.Equal(t, Allow, v)
	}

	v, _ := s.Evaluate("1.2.3.4", cfg, now)
	assert.Equal(t, Block, v)
}

func TestEvaluateThrottleAction(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	cfg.Action = directive.ActionThrottle
	cfg.ThrottleMs = 500
	now := time.Now()

	for i := 0; i < 3; i++ {
		s.Evaluate("1.2.3.4", cfg, now)
	}
	v, ms := s.Evaluate("1.2.3.4", cfg, now)
	assert.Equal(t, Throttle, v)
	assert.Equal(t, 500, ms)
}

func TestEvaluateWindowExpiryResets(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	now := time.Now()

	for i := 0; i < 3; i++ {
		s.Evaluate("1.2.3.4", cfg, now)
	}
	v, _ := s.Evaluate("1.2.3.4", cfg, now)
	assert.Equal(t, Block, v)

	later := now.Add(61 * time.Second)
	v, _ = s.Evaluate("1.2.3.4", cfg, later)
	assert.Equal(t, Allow, v)
}

func TestEvaluateDisabledAlwaysAllows(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	cfg.Enabled = false
	now := time.Now()
	for i := 0; i < 10; i++ {
		v, _ := s.Evaluate("1.2.3.4", cfg, now)
		assert.Equal(t, Allow, v)
	}
}

func TestEvaluateWhitelistBypasses(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	cfg.Whitelist = htregex.ParseList("1.2.3.0/24")
	now := time.Now()
	for i := 0; i < 10; i++ {
		v, _ := s.Evaluate("1.2.3.4", cfg, now)
		assert.Equal(t, Allow, v)
	}
}

func TestIsProtectedDefaultsToAll(t *testing.T) {
	cfg := Config{}
	assert.True(t, cfg.IsProtected("/anything"))
}

func TestIsProtectedRestrictsToConfiguredPaths(t *testing.T) {
	cfg := Config{ProtectPaths: []string{"/login", "/admin"}}
	assert.True(t, cfg.IsProtected("/login/submit"))
	assert.False(t, cfg.IsProtected("/public"))
}

func TestEffectiveIPUsesXFFWhenEnabled(t *testing.T) {
	cfg := Config{UseXFF: true}
	assert.Equal(t, "9.9.9.9", cfg.EffectiveIP("10.0.0.1", "9.9.9.9, 10.0.0.1"))
	assert.Equal(t, "10.0.0.1", Config{}.EffectiveIP("10.0.0.1", "9.9.9.9"))
}

func TestStoreEvictsOldestAtCapacity(t *testing.T) {
	s := NewStore()
	cfg := protectionConfig()
	now := time.Now()

	for i := 0; i < MaxTrackedIPs; i++ {
		s.Evaluate(ipForIndex(i), cfg, now)
	}
	assert.Equal(t, MaxTrackedIPs, s.Len())

	s.Evaluate("overflow.ip", cfg, now)
	assert.Equal(t, MaxTrackedIPs, s.Len())

	_, ok := s.Snapshot(ipForIndex(0))
	assert.False(t, ok)
}

func ipForIndex(i int) string {
	return fmt.Sprintf("10.%d.%d.%d", (i/65536)%256, (i/256)%256, i%256)
}
