package session

import (
	"fmt"
	"strings"
)

// MockSession is an in-memory Session implementation for tests. It is not
// concurrency-safe; each test should use its own instance.
type MockSession struct {
	ReqHeaders  map[string]string
	RespHeaders map[string][]string
	EnvVars     map[string]string
	StatusCode  int
	RequestURI  string
	HTTPMethod  string
	DocRoot     string
	IP          string
	PhpIni      []PhpIniRecord
	Body        []byte
	DirOpts     DirectoryOptions
	Files       map[string]bool
	AuthHeader  string
	HasAuth     bool
	WWWAuth     string
	Modules     map[string]bool
	Logs        []string
}

// NewMockSession returns a MockSession with all maps initialized and status
// 200, matching a fresh request before any directive has run.
func NewMockSession() *MockSession {
	return &MockSession{
		ReqHeaders:  make(map[string]string),
		RespHeaders: make(map[string][]string),
		EnvVars:     make(map[string]string),
		StatusCode:  200,
		Files:       make(map[string]bool),
		Modules:     make(map[string]bool),
	}
}

func (m *MockSession) RequestHeader(name string) (string, bool) {
	v, ok := m.ReqHeaders[strings.ToLower(name)]
	return v, ok
}

func (m *MockSession) SetRequestHeader(name, value string) {
	m.ReqHeaders[strings.ToLower(name)] = value
}

func (m *MockSession) RemoveRequestHeader(name string) {
	delete(m.ReqHeaders, strings.ToLower(name))
}

func (m *MockSession) ResponseHeader(name string) (string, bool) {
	vs, ok := m.RespHeaders[strings.ToLower(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (m *MockSession) SetResponseHeader(name, value string) {
	m.RespHeaders[strings.ToLower(name)] = []string{value}
}

func (m *MockSession) AddResponseHeader(name, value string) {
	key := strings.ToLower(name)
	m.RespHeaders[key] = append(m.RespHeaders[key], value)
}

func (m *MockSession) AppendResponseHeader(name, value string) {
	key := strings.ToLower(name)
	vs := m.RespHeaders[key]
	if len(vs) == 0 {
		m.RespHeaders[key] = []string{value}
		return
	}
	m.RespHeaders[key][0] = vs[0] + ", " + value
}

func (m *MockSession) RemoveResponseHeader(name string) {
	delete(m.RespHeaders, strings.ToLower(name))
}

func (m *MockSession) CountResponseHeader(name string) int {
	return len(m.RespHeaders[strings.ToLower(name)])
}

func (m *MockSession) Env(name string) (string, bool) {
	v, ok := m.EnvVars[name]
	return v, ok
}

func (m *MockSession) SetEnv(name, value string) {
	m.EnvVars[name] = value
}

func (m *MockSession) Status() int { return m.StatusCode }

func (m *MockSession) SetStatus(code int) { m.StatusCode = code }

func (m *MockSession) URI() string { return m.RequestURI }

func (m *MockSession) Method() string { return m.HTTPMethod }

func (m *MockSession) DocumentRoot() string { return m.DocRoot }

func (m *MockSession) ClientIP() string { return m.IP }

func (m *MockSession) SetPhpIni(rec PhpIniRecord) {
	m.PhpIni = append(m.PhpIni, rec)
}

func (m *MockSession) SetResponseBody(body []byte) { m.Body = body }

func (m *MockSession) SetDirectoryOptions(opts DirectoryOptions) { m.DirOpts = opts }

func (m *MockSession) DirectoryOptions() DirectoryOptions { return m.DirOpts }

func (m *MockSession) RewriteURI(uri string) { m.RequestURI = uri }

func (m *MockSession) FileExists(path string) bool { return m.Files[path] }

func (m *MockSession) Authorization() (string, bool) { return m.AuthHeader, m.HasAuth }

func (m *MockSession) SetWWWAuthenticate(value string) { m.WWWAuth = value }

func (m *MockSession) HasModule(name string) bool { return m.Modules[strings.TrimPrefix(name, "!")] }

func (m *MockSession) Log(level LogLevel, format string, args ...any) {
	m.Logs = append(m.Logs, fmt.Sprintf("[%d] "+format, append([]any{level}, args...)...))
}
