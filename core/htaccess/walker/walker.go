// Package walker collects .htaccess files from a document root down to a
// target directory and merges them with child-overrides-parent semantics.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/cache"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/parser"
)

// EventRecorder receives cache-hit/miss and warning notifications as the
// walker resolves a hierarchy. nil means "don't record."
type EventRecorder interface {
	Record(kind, path, detail string)
}

// MaxDirDepth bounds how many directory levels are walked from the document
// root down to the target directory.
const MaxDirDepth = 64

// FileName is the configuration file name looked for at each level.
const FileName = ".htaccess"

// Walker resolves and merges the .htaccess chain for a request path.
type Walker struct {
	cache    *cache.Cache
	recorder EventRecorder
}

// New returns a Walker backed by the given parse cache.
func New(c *cache.Cache) *Walker {
	return &Walker{cache: c}
}

// WithRecorder attaches an EventRecorder so cache hits/misses and parse
// warnings are published as they're encountered, returning w for chaining.
func (w *Walker) WithRecorder(r EventRecorder) *Walker {
	w.recorder = r
	return w
}

func (w *Walker) record(kind, path, detail string) {
	if w.recorder != nil {
		w.recorder.Record(kind, path, detail)
	}
}

// Warning is a non-fatal issue encountered while walking or parsing one
// level of the hierarchy.
type Warning struct {
	Path   string
	Reason string
}

// Resolve walks from docRoot down to targetDir (targetDir must be docRoot or
// a descendant of it) and returns the merged directive list, closest
// (child) directives taking precedence over parents. Missing .htaccess
// files at a level are skipped silently; unreadable or malformed ones
// produce a Warning but never abort the walk.
func (w *Walker) Resolve(docRoot, targetDir string) (*directive.List, []Warning, error) {
	docRoot = filepath.Clean(docRoot)
	targetDir = filepath.Clean(targetDir)

	if targetDir != docRoot && !strings.HasPrefix(targetDir, docRoot+string(filepath.Separator)) {
		return nil, nil, &WalkError{Op: "resolve", Path: targetDir, Reason: "target is not under document root"}
	}

	levels := pathLevels(docRoot, targetDir)
	if len(levels) > MaxDirDepth {
		levels = levels[:MaxDirDepth]
	}

	var merged *directive.List
	var warnings []Warning

	for _, dir := range levels {
		htPath := filepath.Join(dir, FileName)
		list, warn, err := w.readLevel(htPath)
		if err != nil {
			warnings = append(warnings, Warning{Path: htPath, Reason: err.Error()})
			continue
		}
		if warn != "" {
			warnings = append(warnings, Warning{Path: htPath, Reason: warn})
		}
		if list == nil {
			continue
		}
		merged = Merge(merged, list)
	}

	return merged, warnings, nil
}

// readLevel loads one directory's .htaccess file via the cache, falling
// back to parsing + populating the cache on a miss. A missing file returns
// (nil, "", nil) — not an error.
func (w *Walker) readLevel(path string) (*directive.List, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", err
	}

	if cached, ok := w.cache.Get(path, info.ModTime()); ok {
		w.record("cache_hit", path, "")
		return cached, "", nil
	}
	w.record("cache_miss", path, "")

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	res := parser.Parse(string(content), path)
	if res.Directives != nil {
		w.cache.Put(path, info.ModTime(), res.Directives)
	}

	var warn string
	if len(res.Warnings) > 0 {
		parts := make([]string, len(res.Warnings))
		for i, ww := range res.Warnings {
			parts[i] = ww.String()
		}
		warn = strings.Join(parts, "; ")
		w.record("walker_warning", path, warn)
	}
	return res.Directives, warn, nil
}

// pathLevels returns docRoot, then each intermediate directory, down to
// targetDir inclusive.
func pathLevels(docRoot, targetDir string) []string {
	if docRoot == targetDir {
		return []string{docRoot}
	}
	rel, err := filepath.Rel(docRoot, targetDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return []string{docRoot}
	}
	parts := strings.Split(rel, string(filepath.Separator))
	levels := make([]string, 0, len(parts)+1)
	cur := docRoot
	levels = append(levels, cur)
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		cur = filepath.Join(cur, p)
		levels = append(levels, cur)
	}
	return levels
}

// Merge combines parent and child directive lists with child-overrides-
// parent semantics: a child directive replaces the parent directive that
// shares its kind and identity key (see overridesMatch); anything else from the
// child is appended. A nil parent returns a clone of child; a nil child
// returns parent unchanged.
func Merge(parent, child *directive.List) *directive.List {
	if child == nil {
		return parent
	}
	if parent == nil {
		return child.Clone()
	}

	result := parent.Slice()
	for _, c := range child.Slice() {
		replaced := false
		for i, p := range result {
			if overridesMatch(p, c) {
				result[i] = cloneOne(c)
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, cloneOne(c))
		}
	}

	out := directive.NewList()
	for _, d := range result {
		out.Append(d)
	}
	return out
}

func cloneOne(d *directive.Directive) *directive.Directive {
	tmp := directive.NewList()
	tmp.Append(d)
	return tmp.Clone().Head
}

// overridesMatch implements the identity-key table: same Kind, and for
// directive families with more than one slot per scope, a matching key
// (header/ini name, env var, MIME type, error code, CIDR value, pattern...).
func overridesMatch(a, b *directive.Directive) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case directive.HeaderSet, directive.HeaderUnset, directive.HeaderAppend, directive.HeaderMerge, directive.HeaderAdd,
		directive.HeaderAlwaysSet, directive.HeaderAlwaysUnset, directive.HeaderAlwaysAppend, directive.HeaderAlwaysMerge, directive.HeaderAlwaysAdd,
		directive.RequestHeaderSet, directive.RequestHeaderUnset:
		return a.Name == b.Name
	case directive.PhpValue, directive.PhpFlag, directive.PhpAdminValue, directive.PhpAdminFlag:
		return a.Name == b.Name
	case directive.SetEnv:
		return a.Name == b.Name
	case directive.ExpiresByType:
		return a.Name == b.Name
	case directive.ErrorDocument:
		return a.Payload.ErrorCode == b.Payload.ErrorCode
	case directive.Order, directive.ExpiresActive, directive.ExpiresDefault,
		directive.BruteForceProtection, directive.BruteForceAllowedAttempts, directive.BruteForceWindow,
		directive.BruteForceAction, directive.BruteForceThrottleDuration, directive.BruteForceXForwardedFor,
		directive.Options, directive.AuthType, directive.AuthName, directive.AuthUserFile,
		directive.SetHandler, directive.DirectoryIndex, directive.ForceType:
		return true
	case directive.AllowFrom, directive.DenyFrom:
		return a.Value == b.Value
	case directive.Redirect:
		return a.Name == b.Name
	case directive.RedirectMatch:
		return a.Payload.Pattern == b.Payload.Pattern
	case directive.FilesMatch:
		return a.Payload.Pattern == b.Payload.Pattern
	case directive.Files:
		return a.Name == b.Name
	case directive.IfModule:
		return a.Name == b.Name
	case directive.Limit, directive.LimitExcept:
		return a.Payload.Methods == b.Payload.Methods
	case directive.SetEnvIf, directive.BrowserMatch:
		return a.Name == b.Name && a.Payload.Pattern == b.Payload.Pattern
	case directive.AddHandler, directive.AddType, directive.AddEncoding, directive.AddCharset:
		return a.Value == b.Value
	case directive.BruteForceWhitelist, directive.BruteForceProtectPath:
		return a.Value == b.Value
	default:
		return false
	}
}

// WalkError reports a non-recoverable failure while resolving a hierarchy
// (e.g. the target directory escaping the document root).
type WalkError struct {
	Op     string
	Path   string
	Reason string
}

func (e *WalkError) Error() string {
	return "walker: " + e.Op + " " + e.Path + ": " + e.Reason
}
