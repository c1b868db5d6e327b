package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

func basename(uri string) string {
	idx := strings.LastIndex(uri, "/")
	if idx < 0 {
		return uri
	}
	return uri[idx+1:]
}

// EvaluateFilesMatch runs the children of every matching FilesMatch/Files
// container against the request URI's basename. Non-header children are
// skipped with a warning, per §4.7.
func EvaluateFilesMatch(s Session, list *directive.List) {
	if list == nil {
		return
	}
	base := basename(s.URI())
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.FilesMatch:
			re, err := htregex.CompileERE(d.Payload.Pattern)
			if err != nil {
				s.Log(LogWarn, "FilesMatch: invalid pattern %q: %v", d.Payload.Pattern, err)
				continue
			}
			if re.MatchString(base) {
				runHeaderOnlyChildren(s, d.Payload.Children)
			}
		case directive.Files:
			if d.Name == base {
				runHeaderOnlyChildren(s, d.Payload.Children)
			}
		}
	}
}

func runHeaderOnlyChildren(s Session, children *directive.List) {
	if children == nil {
		return
	}
	for _, c := range children.Slice() {
		switch c.Kind {
		case directive.HeaderSet, directive.HeaderUnset, directive.HeaderAppend, directive.HeaderMerge, directive.HeaderAdd,
			directive.HeaderAlwaysSet, directive.HeaderAlwaysUnset, directive.HeaderAlwaysAppend, directive.HeaderAlwaysMerge, directive.HeaderAlwaysAdd,
			directive.RequestHeaderSet, directive.RequestHeaderUnset:
			single := directive.NewList()
			single.Append(shallowCopy(c))
			EvaluateHeaders(s, single)
		default:
			s.Log(LogWarn, "FilesMatch/Files: skipping non-header child directive %s", c.Kind)
		}
	}
}

// EvaluateExpires computes the effective Cache-Control/Expires headers for
// the response's current Content-Type, per §4.7.
func EvaluateExpires(s Session, list *directive.List, now time.Time) {
	if list == nil {
		return
	}
	active := false
	var byType map[string]int64
	var def int64 = -1

	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.ExpiresActive:
			active = d.Payload.Active
		case directive.ExpiresByType:
			if byType == nil {
				byType = make(map[string]int64)
			}
			byType[d.Name] = d.Payload.DurationSec
		case directive.ExpiresDefault:
			def = d.Payload.DurationSec
		}
	}
	if !active {
		return
	}

	contentType, _ := s.ResponseHeader("Content-Type")
	contentType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])

	maxAge, ok := byType[contentType]
	if !ok {
		if def < 0 {
			return
		}
		maxAge = def
	}

	s.SetResponseHeader("Cache-Control", "max-age="+strconv.FormatInt(maxAge, 10))
	s.SetResponseHeader("Expires", now.Add(time.Duration(maxAge)*time.Second).UTC().Format(time.RFC1123))
}

// EvaluateErrorDocument handles the ErrorDocument family once the response
// status is known. It returns true if an ErrorDocument fired a redirect.
func EvaluateErrorDocument(s Session, list *directive.List) bool {
	if list == nil {
		return false
	}
	status := s.Status()
	for _, d := range list.Slice() {
		if d.Kind != directive.ErrorDocument || d.Payload.ErrorCode != status {
			continue
		}
		v := d.Value
		switch {
		case strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://"):
			s.SetStatus(302)
			s.SetResponseHeader("Location", v)
			return true
		case strings.HasPrefix(v, `"`):
			text := strings.TrimPrefix(v, `"`)
			text = strings.TrimSuffix(text, `"`)
			s.SetResponseBody([]byte(text))
			return false
		case strings.HasPrefix(v, "/"):
			s.Log(LogInfo, "ErrorDocument: local path %q falls back to host default error page", v)
			return false
		default:
			s.Log(LogWarn, "ErrorDocument: unrecognized value form %q", v)
			return false
		}
	}
	return false
}

// EvaluateDirectoryPolicy applies Options and the handler/type/index/charset
// family to the session.
func EvaluateDirectoryPolicy(s Session, list *directive.List) {
	if list == nil {
		return
	}
	opts := s.DirectoryOptions()
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.Options:
			if d.Payload.Indexes != directive.FlagUnset {
				opts.Indexes = d.Payload.Indexes
			}
			if d.Payload.FollowSymlinks != directive.FlagUnset {
				opts.FollowSymlinks = d.Payload.FollowSymlinks
			}
			if d.Payload.MultiViews != directive.FlagUnset {
				opts.MultiViews = d.Payload.MultiViews
			}
			if d.Payload.ExecCGI != directive.FlagUnset {
				opts.ExecCGI = d.Payload.ExecCGI
			}
		case directive.AddHandler:
			s.SetEnv("HANDLER_"+d.Value, d.Name)
		case directive.SetHandler:
			s.SetEnv("REQUEST_HANDLER", d.Value)
		case directive.AddType:
			s.SetEnv("MIME_TYPE_"+d.Value, d.Name)
		case directive.ForceType:
			s.SetResponseHeader("Content-Type", d.Value)
		case directive.AddEncoding:
			s.SetEnv("ENCODING_"+d.Value, d.Name)
		case directive.AddCharset:
			s.SetEnv("CHARSET_"+d.Value, d.Name)
		case directive.DirectoryIndex:
			applyDirectoryIndex(s, d.Value)
		}
	}
	s.SetDirectoryOptions(opts)
}

func applyDirectoryIndex(s Session, candidates string) {
	root := s.DocumentRoot()
	for _, name := range strings.Fields(candidates) {
		if s.FileExists(root + "/" + name) {
			s.RewriteURI(s.URI() + name)
			return
		}
	}
}

// MethodAllowed reports whether method is present (case-insensitively) in
// the space-separated method list carried by a Limit/LimitExcept container.
func MethodAllowed(methods, method string) bool {
	for _, m := range strings.Fields(methods) {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// RunLimitFiltered collects the children of Limit/LimitExcept/IfModule
// containers in list (recursing into nested ones), subject to their filter
// condition, and returns a flattened list of copies of every other directive
// whose enclosing conditions held, for the phase executors to run. It
// executes nothing itself. Containers not satisfying their condition
// contribute nothing.
func RunLimitFiltered(s Session, list *directive.List) *directive.List {
	if list == nil {
		return nil
	}
	out := directive.NewList()
	var walk func(l *directive.List)
	walk = func(l *directive.List) {
		for _, d := range l.Slice() {
			switch d.Kind {
			case directive.Limit:
				if MethodAllowed(d.Payload.Methods, s.Method()) {
					walk(d.Payload.Children)
				}
			case directive.LimitExcept:
				if !MethodAllowed(d.Payload.Methods, s.Method()) {
					walk(d.Payload.Children)
				}
			case directive.IfModule:
				has := s.HasModule(strings.TrimPrefix(d.Name, "!"))
				if d.Payload.Negated {
					has = !has
				}
				if has {
					walk(d.Payload.Children)
				}
			default:
				out.Append(shallowCopy(d))
			}
		}
	}
	walk(list)
	return out
}

// shallowCopy returns a new Directive with the same Kind/Name/Value/Payload
// as d but no linkage, so appending it to another list never rewrites d's
// own Next pointer. list is a borrowed, read-only view for every executor;
// RunLimitFiltered must not splice the caller's nodes into its own output.
func shallowCopy(d *directive.Directive) *directive.Directive {
	cp := *d
	cp.Next = nil
	return &cp
}
