package htregex

import (
	"fmt"
	"regexp"
)

// CompileERE compiles a POSIX extended regular expression. Go's
// regexp.CompilePOSIX gives leftmost-longest POSIX ERE semantics, matching
// the anchors/alternation/character-class/backreference-free feature set
// spec.md requires for RedirectMatch, FilesMatch, SetEnvIf, and BrowserMatch.
func CompileERE(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return re, nil
}

// SubstituteGroups replaces $0..$9 in tmpl with the corresponding groups of
// match (the result of FindStringSubmatch). $0 is the whole match.
func SubstituteGroups(tmpl string, match []string) string {
	out := make([]byte, 0, len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '$' && i+1 < len(tmpl) && tmpl[i+1] >= '0' && tmpl[i+1] <= '9' {
			idx := int(tmpl[i+1] - '0')
			if idx < len(match) {
				out = append(out, match[idx]...)
			}
			i++
			continue
		}
		out = append(out, tmpl[i])
	}
	return string(out)
}
