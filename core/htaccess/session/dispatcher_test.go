package session

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/parser"
	"github.com/wyndcliff/htaccessd/core/htaccess/walker"
	"golang.org/x/crypto/bcrypt"
)

func parseOK(t *testing.T, text string) *directive.List {
	t.Helper()
	res := parser.Parse(text, "t")
	require.Empty(t, res.Warnings)
	require.NotNil(t, res.Directives)
	return res.Directives
}

func TestScenarioRedirectShortCircuits(t *testing.T) {
	list := parseOK(t, "Redirect 301 /old /new\n")
	s := NewMockSession()
	s.RequestURI = "/old/page"

	disp := NewDispatcher(nil)
	stop := disp.HandleRequestHeader(s, list)

	assert.True(t, stop)
	assert.Equal(t, 301, s.Status())
	loc, _ := s.ResponseHeader("Location")
	assert.Equal(t, "/new", loc)
}

func TestScenarioRedirectMatchSubstitution(t *testing.T) {
	list := parseOK(t, `RedirectMatch ^/blog/([0-9]+)/(.+)$ https://new.example.com/$2/$1`)
	s := NewMockSession()
	s.RequestURI = "/blog/2024/hello"

	disp := NewDispatcher(nil)
	stop := disp.HandleRequestHeader(s, list)

	assert.True(t, stop)
	assert.Equal(t, 302, s.Status())
	loc, _ := s.ResponseHeader("Location")
	assert.Equal(t, "https://new.example.com/hello/2024", loc)
}

func TestScenarioOrderDenyAllow(t *testing.T) {
	list := parseOK(t, "Order Deny,Allow\nDeny from all\nAllow from 10.0.0.0/8\n")

	allowed := NewMockSession()
	allowed.IP = "10.5.3.1"
	disp := NewDispatcher(nil)
	stop := disp.HandleRequestHeader(allowed, list)
	assert.False(t, stop)

	denied := NewMockSession()
	denied.IP = "8.8.8.8"
	stop = disp.HandleRequestHeader(denied, list)
	assert.True(t, stop)
	assert.Equal(t, 403, denied.Status())
}

func TestScenarioBruteForceBlocksOnThirdAttempt(t *testing.T) {
	list := parseOK(t, "BruteForceProtection On\nBruteForceAllowedAttempts 2\nBruteForceWindow 300\nBruteForceAction Block\n")
	disp := NewDispatcher(nil)

	for i := 0; i < 2; i++ {
		s := NewMockSession()
		s.IP = "1.2.3.4"
		s.RequestURI = "/"
		stop := disp.HandleRequestHeader(s, list)
		assert.False(t, stop)
	}
	third := NewMockSession()
	third.IP = "1.2.3.4"
	third.RequestURI = "/"
	stop := disp.HandleRequestHeader(third, list)
	assert.True(t, stop)
	assert.Equal(t, 403, third.Status())
}

func TestScenarioBasicAuthSuccessAndFailure(t *testing.T) {
	list := parseOK(t, `AuthType Basic
AuthName "R"
AuthUserFile /etc/htpasswd/site
Require valid-user
`)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	userFile := []byte("alice:" + string(hash) + "\n")

	readFile := func(path string) ([]byte, error) {
		if path != "/etc/htpasswd/site" {
			return nil, errors.New("not found")
		}
		return userFile, nil
	}

	disp := NewDispatcher(readFile)

	good := NewMockSession()
	good.HasAuth = true
	good.AuthHeader = basicHeader("alice", "correct horse")
	stop := disp.HandleRequestHeader(good, list)
	assert.False(t, stop)

	bad := NewMockSession()
	bad.HasAuth = true
	bad.AuthHeader = basicHeader("alice", "wrong")
	stop = disp.HandleRequestHeader(bad, list)
	assert.True(t, stop)
	assert.Equal(t, 401, bad.Status())
	assert.Equal(t, `Basic realm="R"`, bad.WWWAuth)
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestHeaderMergeIdempotence(t *testing.T) {
	list := parseOK(t, `Header merge Vary Cookie
Header merge Vary Cookie
`)
	s := NewMockSession()
	disp := NewDispatcher(nil)
	disp.HandleResponseHeader(s, list)
	v, _ := s.ResponseHeader("Vary")
	assert.Equal(t, "Cookie", v)
}

func TestHeaderSetIdempotence(t *testing.T) {
	list := parseOK(t, `Header set X-A one
Header set X-A two
`)
	s := NewMockSession()
	disp := NewDispatcher(nil)
	disp.HandleResponseHeader(s, list)
	assert.Equal(t, 1, s.CountResponseHeader("X-A"))
	v, _ := s.ResponseHeader("X-A")
	assert.Equal(t, "two", v)
}

func TestLimitLimitExceptDuality(t *testing.T) {
	list := parseOK(t, `<Limit GET>
SetEnv IN_LIMIT 1
</Limit>
<LimitExcept GET>
SetEnv IN_LIMIT_EXCEPT 1
</LimitExcept>
`)
	disp := NewDispatcher(nil)

	getReq := NewMockSession()
	getReq.HTTPMethod = "GET"
	disp.HandleRequestHeader(getReq, list)
	_, hasLimit := getReq.Env("IN_LIMIT")
	_, hasExcept := getReq.Env("IN_LIMIT_EXCEPT")
	assert.True(t, hasLimit)
	assert.False(t, hasExcept)

	postReq := NewMockSession()
	postReq.HTTPMethod = "POST"
	disp.HandleRequestHeader(postReq, list)
	_, hasLimit2 := postReq.Env("IN_LIMIT")
	_, hasExcept2 := postReq.Env("IN_LIMIT_EXCEPT")
	assert.False(t, hasLimit2)
	assert.True(t, hasExcept2)
}

func TestExpiresHeadersWrittenOnlyWhenActive(t *testing.T) {
	list := parseOK(t, `ExpiresActive On
ExpiresByType text/html "access plus 1 hour"
`)
	s := NewMockSession()
	s.SetResponseHeader("Content-Type", "text/html")
	disp := NewDispatcher(nil)
	disp.HandleResponseHeader(s, list)

	cc, ok := s.ResponseHeader("Cache-Control")
	assert.True(t, ok)
	assert.Equal(t, "max-age=3600", cc)
}

func TestPHPBlacklistRejectsSystemSettings(t *testing.T) {
	list := parseOK(t, `php_value open_basedir /tmp
php_value memory_limit 256M
`)
	s := NewMockSession()
	disp := NewDispatcher(nil)
	disp.HandleRequestHeader(s, list)

	require.Len(t, s.PhpIni, 1)
	assert.Equal(t, "memory_limit", s.PhpIni[0].Name)
}

// TestRunLimitFilteredDoesNotMutateInput guards against the aliasing bug
// where a previous call appended the caller's own directive nodes into its
// output list, and List.Append rewrites Next on the appended node — silently
// re-linking (and truncating) the caller's list out from under it. server.go
// calls RunLimitFiltered twice against the same merged list (once per
// request/response phase), so a single pass must never change what a second
// pass over the same list sees.
func TestRunLimitFilteredDoesNotMutateInput(t *testing.T) {
	list := parseOK(t, `SetEnv BEFORE 1
<Limit GET>
SetEnv IN_LIMIT 1
</Limit>
SetEnv AFTER 1
`)
	before := list.Slice()
	s := NewMockSession()
	s.HTTPMethod = "GET"

	first := RunLimitFiltered(s, list)
	require.Len(t, first.Slice(), 3)

	after := list.Slice()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Same(t, before[i], after[i])
	}

	second := RunLimitFiltered(s, list)
	require.Len(t, second.Slice(), 3)
}

func TestDirectoryOverrideDeepestWins(t *testing.T) {
	parent := parseOK(t, "Header set X-H parent\n")
	child := parseOK(t, "Header set X-H child\n")
	merged := walker.Merge(parent, child)
	require.Equal(t, 1, merged.Len)

	s := NewMockSession()
	disp := NewDispatcher(nil)
	disp.HandleResponseHeader(s, merged)
	v, _ := s.ResponseHeader("X-H")
	assert.Equal(t, "child", v)
}
