package session

import (
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

// EvaluateEnv applies SetEnv unconditionally, then SetEnvIf/BrowserMatch
// conditionally against their attribute source.
func EvaluateEnv(s Session, list *directive.List) {
	if list == nil {
		return
	}
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.SetEnv:
			s.SetEnv(d.Name, d.Value)
		case directive.SetEnvIf:
			applyEnvIf(s, d, attributeSource(s, d.Payload.Attribute))
		case directive.BrowserMatch:
			ua, _ := s.RequestHeader("User-Agent")
			applyEnvIf(s, d, ua)
		}
	}
}

// attributeSource resolves a SetEnvIf attribute name to its live value:
// "Remote_Addr" or "Remote_IP" → client IP, "Request_URI" → URI, anything
// else is looked up as a request header.
func attributeSource(s Session, attr string) string {
	switch attr {
	case "Remote_Addr", "Remote_IP":
		return s.ClientIP()
	case "Request_URI":
		return s.URI()
	default:
		v, _ := s.RequestHeader(attr)
		return v
	}
}

func applyEnvIf(s Session, d *directive.Directive, subject string) {
	re, err := htregex.CompileERE(d.Payload.Pattern)
	if err != nil {
		s.Log(LogWarn, "SetEnvIf/BrowserMatch: invalid pattern %q: %v", d.Payload.Pattern, err)
		return
	}
	if re.MatchString(subject) {
		s.SetEnv(d.Name, d.Value)
	}
}
