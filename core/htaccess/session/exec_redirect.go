package session

import (
	"strconv"
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

// MaxRedirectURLLen bounds the interpolated Location header length for
// RedirectMatch substitution.
const MaxRedirectURLLen = 4096

// EvaluateRedirect scans list for the first matching Redirect or
// RedirectMatch and applies it. It returns true if a redirect fired (the
// caller must short-circuit the remaining dispatch on a true return).
func EvaluateRedirect(s Session, list *directive.List) bool {
	if list == nil {
		return false
	}
	uri := s.URI()

	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.Redirect:
			if strings.HasPrefix(uri, d.Name) {
				applyRedirect(s, d.Payload.StatusCode, d.Value)
				return true
			}
		case directive.RedirectMatch:
			re, err := htregex.CompileERE(d.Payload.Pattern)
			if err != nil {
				s.Log(LogWarn, "RedirectMatch: invalid pattern %q: %v", d.Payload.Pattern, err)
				continue
			}
			match := re.FindStringSubmatch(uri)
			if match == nil {
				continue
			}
			target := htregex.SubstituteGroups(d.Value, match)
			if len(target) > MaxRedirectURLLen {
				s.Log(LogWarn, "RedirectMatch: interpolated URL exceeds %d bytes", MaxRedirectURLLen)
				continue
			}
			applyRedirect(s, d.Payload.StatusCode, target)
			return true
		}
	}
	return false
}

func applyRedirect(s Session, statusCode int, target string) {
	if statusCode == 0 {
		statusCode = 302
	}
	s.SetStatus(statusCode)
	s.SetResponseHeader("Location", target)
}

// formatStatus is a small helper for executors that need to stringify a
// status code for env/diagnostic purposes.
func formatStatus(code int) string {
	return strconv.Itoa(code)
}
