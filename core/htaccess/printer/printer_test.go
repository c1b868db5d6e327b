package printer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wyndcliff/htaccessd/core/htaccess/parser"
)

func roundTrip(t *testing.T, text string) {
	t.Helper()
	res := parser.Parse(text, "t")
	require.Empty(t, res.Warnings)
	require.NotNil(t, res.Directives)

	printed := Print(res.Directives)
	res2 := parser.Parse(printed, "t2")
	require.Empty(t, res2.Warnings, "re-parsing printed output: %s", printed)
	require.NotNil(t, res2.Directives)

	require.Equal(t, res.Directives.Len, res2.Directives.Len)
	orig := res.Directives.Slice()
	again := res2.Directives.Slice()
	for i := range orig {
		require.Equal(t, orig[i].Kind, again[i].Kind)
		require.Equal(t, orig[i].Name, again[i].Name)
		require.Equal(t, orig[i].Value, again[i].Value)
	}
}

func TestRoundTripV1(t *testing.T) {
	roundTrip(t, `Header set X-Frame-Options DENY
Header always append Vary Cookie
Order Allow,Deny
Allow from all
Deny from 192.168.1.0/24
Redirect /old /new
Redirect 301 /a /b
ErrorDocument 404 "Not found"
ExpiresActive On
ExpiresByType image/png "access plus 1 month"
SetEnv APP_ENV production
SetEnvIf User-Agent ".*MSIE.*" is_ie=1
BrowserMatch "Mozilla" netscape=1
BruteForceProtection On
BruteForceAllowedAttempts 5
BruteForceWindow 300
BruteForceAction Throttle
BruteForceThrottleDuration 1500
`)
}

func TestRoundTripFilesMatchContainer(t *testing.T) {
	roundTrip(t, `<FilesMatch "\.php$">
Order Deny,Allow
Deny from all
</FilesMatch>
`)
}

func TestRoundTripV2(t *testing.T) {
	roundTrip(t, `<IfModule mod_headers.c>
Header set X 1
</IfModule>
Options +Indexes -FollowSymLinks
Require all granted
Require ip 10.0.0.0/8
Require valid-user
<Limit GET POST>
Require valid-user
</Limit>
AuthType Basic
AuthName "Restricted"
AuthUserFile /etc/htpasswd/site
AddHandler cgi-script .cgi
SetHandler application/x-httpd-php
AddType application/json .json
DirectoryIndex index.php index.html
ForceType text/plain
AddEncoding gzip .gz
AddCharset UTF-8 .utf8
BruteForceXForwardedFor On
BruteForceWhitelist 10.0.0.0/8
BruteForceProtectPath /login
ExpiresDefault "access plus 7 days"
`)
}

func TestRoundTripNestedContainers(t *testing.T) {
	roundTrip(t, `<IfModule mod_headers.c>
<Files "secret.txt">
Deny from all
</Files>
</IfModule>
`)
}
