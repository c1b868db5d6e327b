// Package session defines the narrow contract the dispatcher needs from the
// host HTTP server, plus the dispatcher itself and the per-directive-family
// executors that implement it.
package session

import "github.com/wyndcliff/htaccessd/core/htaccess/directive"

// LogLevel mirrors the four levels the host logging sink accepts.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// PhpIniRecord is one (name, value, is_admin) tuple pushed onto the session.
type PhpIniRecord struct {
	Name    string
	Value   string
	IsAdmin bool
}

// DirectoryOptions is the tri-state Options record applied to a session.
type DirectoryOptions struct {
	Indexes        directive.OptionFlag
	FollowSymlinks directive.OptionFlag
	MultiViews     directive.OptionFlag
	ExecCGI        directive.OptionFlag
}

// Session is the opaque per-request collaborator the host server provides.
// The core never outlives a hook call with pointers into it — every value
// read from Session must be copied before the hook returns.
type Session interface {
	// Request headers.
	RequestHeader(name string) (string, bool)
	SetRequestHeader(name, value string)
	RemoveRequestHeader(name string)

	// Response headers.
	ResponseHeader(name string) (string, bool)
	SetResponseHeader(name, value string)          // replace all values
	AddResponseHeader(name, value string)           // multi-value add
	AppendResponseHeader(name, value string)        // comma-merge single value
	RemoveResponseHeader(name string)
	CountResponseHeader(name string) int

	// Environment variables.
	Env(name string) (string, bool)
	SetEnv(name, value string)

	// Status code.
	Status() int
	SetStatus(code int)

	// Request line.
	URI() string
	Method() string

	// Server context.
	DocumentRoot() string
	ClientIP() string

	// PHP ini push.
	SetPhpIni(rec PhpIniRecord)

	// Response body override (ErrorDocument text mode).
	SetResponseBody(body []byte)

	// Directory options.
	SetDirectoryOptions(opts DirectoryOptions)
	DirectoryOptions() DirectoryOptions

	// Internal URI rewrite (DirectoryIndex support).
	RewriteURI(uri string)

	// File existence probe (DirectoryIndex support).
	FileExists(path string) bool

	// Authorization.
	Authorization() (string, bool)
	SetWWWAuthenticate(value string)

	// Module condition (IfModule truth value supplied by the host).
	HasModule(name string) bool

	// Logging.
	Log(level LogLevel, format string, args ...any)
}
