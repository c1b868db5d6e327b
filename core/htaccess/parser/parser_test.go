package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

func TestParseEmptyAndCommentsOnly(t *testing.T) {
	res := Parse("", "t")
	assert.Nil(t, res.Directives)

	res = Parse("# just a comment\n\n   \n", "t")
	assert.Nil(t, res.Directives)
}

func TestParseHeaderFamily(t *testing.T) {
	res := Parse(`Header set X-Frame-Options DENY
Header always append Vary Cookie
Header unset ETag
`, "t")
	require.Empty(t, res.Warnings)
	require.NotNil(t, res.Directives)
	ds := res.Directives.Slice()
	require.Len(t, ds, 3)

	assert.Equal(t, directive.HeaderSet, ds[0].Kind)
	assert.Equal(t, "X-Frame-Options", ds[0].Name)
	assert.Equal(t, "DENY", ds[0].Value)

	assert.Equal(t, directive.HeaderAlwaysAppend, ds[1].Kind)
	assert.True(t, ds[1].Payload.Always)
	assert.Equal(t, "Vary", ds[1].Name)
	assert.Equal(t, "Cookie", ds[1].Value)

	assert.Equal(t, directive.HeaderUnset, ds[2].Kind)
	assert.Equal(t, "ETag", ds[2].Name)
}

func TestParseOrderAllowDeny(t *testing.T) {
	res := Parse("Order Allow,Deny\nAllow from all\nDeny from 192.168.1.0/24\n", "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 3)
	assert.Equal(t, directive.AllowDeny, ds[0].Payload.AclOrder)
	assert.Equal(t, "all", ds[1].Value)
	assert.Equal(t, "192.168.1.0/24", ds[2].Value)
}

func TestParseRedirectDefaultStatus(t *testing.T) {
	res := Parse("Redirect /old /new\nRedirect 301 /a /b\n", "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	assert.Equal(t, 302, ds[0].Payload.StatusCode)
	assert.Equal(t, 301, ds[1].Payload.StatusCode)
}

func TestParseErrorDocumentPreservesQuoting(t *testing.T) {
	res := Parse(`ErrorDocument 404 "The page was not found"`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, 404, ds[0].Payload.ErrorCode)
	assert.Equal(t, `"The page was not found"`, ds[0].Value)
}

func TestParseFilesMatchContainer(t *testing.T) {
	res := Parse(`<FilesMatch "\.php$">
Order Deny,Allow
Deny from all
</FilesMatch>
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, directive.FilesMatch, ds[0].Kind)
	assert.Equal(t, `\.php$`, ds[0].Payload.Pattern)
	children := ds[0].Payload.Children.Slice()
	require.Len(t, children, 2)
	assert.Equal(t, directive.Order, children[0].Kind)
	assert.Equal(t, directive.DenyFrom, children[1].Kind)
}

func TestParseUnclosedContainerDiscarded(t *testing.T) {
	res := Parse(`Header set X 1
<FilesMatch "\.php$">
Deny from all
`, "t")
	require.NotEmpty(t, res.Warnings)
	require.NotNil(t, res.Directives)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, directive.HeaderSet, ds[0].Kind)
}

func TestParseIfModuleNegated(t *testing.T) {
	res := Parse(`<IfModule !mod_rewrite.c>
Header set X 1
</IfModule>
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.True(t, ds[0].Payload.Negated)
	assert.Equal(t, "!mod_rewrite.c", ds[0].Name)
}

func TestParseNestedContainers(t *testing.T) {
	res := Parse(`<IfModule mod_headers.c>
<Files "secret.txt">
Deny from all
</Files>
</IfModule>
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	inner := ds[0].Payload.Children.Slice()
	require.Len(t, inner, 1)
	assert.Equal(t, directive.Files, inner[0].Kind)
	assert.Equal(t, "secret.txt", inner[0].Name)
}

func TestParseSetEnvIfAndBrowserMatch(t *testing.T) {
	res := Parse(`SetEnvIf User-Agent ".*MSIE.*" is_ie=1
BrowserMatch "Mozilla" netscape=1
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	assert.Equal(t, "User-Agent", ds[0].Payload.Attribute)
	assert.Equal(t, "is_ie", ds[0].Name)
	assert.Equal(t, "1", ds[0].Value)
	assert.Equal(t, "netscape", ds[1].Name)
}

func TestParseRequireFamily(t *testing.T) {
	res := Parse(`Require all granted
Require all denied
Require ip 10.0.0.0/8
Require not ip 10.0.0.5
Require valid-user
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 5)
	assert.Equal(t, directive.RequireAllGranted, ds[0].Kind)
	assert.Equal(t, directive.RequireAllDenied, ds[1].Kind)
	assert.Equal(t, directive.RequireIp, ds[2].Kind)
	assert.Equal(t, "10.0.0.0/8", ds[2].Value)
	assert.Equal(t, directive.RequireNotIp, ds[3].Kind)
	assert.Equal(t, directive.RequireValidUser, ds[4].Kind)
}

func TestParseLimitContainer(t *testing.T) {
	res := Parse(`<Limit GET POST>
Require valid-user
</Limit>
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, "GET POST", ds[0].Payload.Methods)
}

func TestParseOptions(t *testing.T) {
	res := Parse("Options +Indexes -FollowSymLinks +ExecCGI\n", "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, directive.FlagEnabled, ds[0].Payload.Indexes)
	assert.Equal(t, directive.FlagDisabled, ds[0].Payload.FollowSymlinks)
	assert.Equal(t, directive.FlagEnabled, ds[0].Payload.ExecCGI)
	assert.Equal(t, directive.FlagUnset, ds[0].Payload.MultiViews)
}

func TestParseBruteForceFamily(t *testing.T) {
	res := Parse(`BruteForceProtection On
BruteForceAllowedAttempts 5
BruteForceWindow 300
BruteForceAction Block
BruteForceThrottleDuration 2000
BruteForceXForwardedFor On
BruteForceWhitelist 10.0.0.0/8
BruteForceProtectPath /login
`, "t")
	require.Empty(t, res.Warnings)
	ds := res.Directives.Slice()
	require.Len(t, ds, 8)
	assert.True(t, ds[0].Payload.BFEnabled)
	assert.Equal(t, 5, ds[1].Payload.BFAllowedAttempts)
	assert.Equal(t, 300, ds[2].Payload.BFWindowSec)
	assert.Equal(t, directive.ActionBlock, ds[3].Payload.BFAction)
	assert.Equal(t, 2000, ds[4].Payload.BFThrottleMs)
}

func TestParseUnknownDirectiveWarnsAndSkips(t *testing.T) {
	res := Parse("ThisIsNotReal foo bar\nHeader set X 1\n", "t")
	require.Len(t, res.Warnings, 1)
	ds := res.Directives.Slice()
	require.Len(t, ds, 1)
	assert.Equal(t, directive.HeaderSet, ds[0].Kind)
}

func TestParseContainerDepthLimit(t *testing.T) {
	var b string
	for i := 0; i < maxContainerDepth+1; i++ {
		b += `<IfModule mod_x.c>` + "\n"
	}
	res := Parse(b, "t")
	assert.NotEmpty(t, res.Warnings)
}
