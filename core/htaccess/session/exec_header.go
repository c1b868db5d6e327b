package session

import (
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// EvaluateHeaders applies the Header/RequestHeader family to the response
// (and, for RequestHeaderSet/Unset, the request) at the send-response-header
// phase.
func EvaluateHeaders(s Session, list *directive.List) {
	if list == nil {
		return
	}
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.HeaderSet, directive.HeaderAlwaysSet:
			s.SetResponseHeader(d.Name, d.Value)
		case directive.HeaderUnset, directive.HeaderAlwaysUnset:
			s.RemoveResponseHeader(d.Name)
		case directive.HeaderAppend, directive.HeaderAlwaysAppend:
			s.AppendResponseHeader(d.Name, d.Value)
		case directive.HeaderMerge, directive.HeaderAlwaysMerge:
			applyHeaderMerge(s, d.Name, d.Value)
		case directive.HeaderAdd, directive.HeaderAlwaysAdd:
			s.AddResponseHeader(d.Name, d.Value)
		case directive.RequestHeaderSet:
			s.SetRequestHeader(d.Name, d.Value)
		case directive.RequestHeaderUnset:
			s.RemoveRequestHeader(d.Name)
		}
	}
}

// applyHeaderMerge appends value to name's existing comma-separated value
// unless it is already present as one of the tokens, making repeated calls
// idempotent.
func applyHeaderMerge(s Session, name, value string) {
	existing, ok := s.ResponseHeader(name)
	if !ok || existing == "" {
		s.SetResponseHeader(name, value)
		return
	}
	for _, tok := range strings.Split(existing, ",") {
		if strings.TrimSpace(tok) == value {
			return
		}
	}
	s.AppendResponseHeader(name, value)
}
