package server

import (
	"encoding/base64"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"github.com/wyndcliff/htaccessd/core/htaccess/session"
)

// PBSession adapts a *core.RequestEvent to the session.Session contract.
// Response mutations are staged locally and applied to the real request
// event by Flush, so the dispatcher's two phases can run to completion
// before anything is actually written to the wire.
type PBSession struct {
	event *core.RequestEvent
	log   func(level session.LogLevel, format string, args ...any)

	status       int
	respHeaders  http.Header
	removedResp  map[string]bool
	env          map[string]string
	phpIni       []session.PhpIniRecord
	body         []byte
	bodySet      bool
	dirOpts      session.DirectoryOptions
	rewrittenURI string
	wwwAuth      string
	docRoot      string
	modules      map[string]bool
}

// NewPBSession wraps e, staging response state until Flush is called.
func NewPBSession(e *core.RequestEvent, docRoot string, modules map[string]bool, log func(level session.LogLevel, format string, args ...any)) *PBSession {
	return &PBSession{
		event:       e,
		log:         log,
		status:      http.StatusOK,
		respHeaders: make(http.Header),
		removedResp: make(map[string]bool),
		env:         make(map[string]string),
		docRoot:     docRoot,
		modules:     modules,
	}
}

func (s *PBSession) RequestHeader(name string) (string, bool) {
	v := s.event.Request.Header.Get(name)
	if v == "" {
		return "", false
	}
	return v, true
}

func (s *PBSession) SetRequestHeader(name, value string) {
	s.event.Request.Header.Set(name, value)
}

func (s *PBSession) RemoveRequestHeader(name string) {
	s.event.Request.Header.Del(name)
}

func (s *PBSession) ResponseHeader(name string) (string, bool) {
	if s.removedResp[strings.ToLower(name)] {
		return "", false
	}
	if v := s.respHeaders.Get(name); v != "" {
		return v, true
	}
	v := s.event.Response.Header().Get(name)
	if v == "" {
		return "", false
	}
	return v, true
}

func (s *PBSession) SetResponseHeader(name, value string) {
	s.respHeaders.Set(name, value)
	delete(s.removedResp, strings.ToLower(name))
}

func (s *PBSession) AddResponseHeader(name, value string) {
	s.respHeaders.Add(name, value)
	delete(s.removedResp, strings.ToLower(name))
}

func (s *PBSession) AppendResponseHeader(name, value string) {
	existing, ok := s.ResponseHeader(name)
	if !ok || existing == "" {
		s.SetResponseHeader(name, value)
		return
	}
	s.SetResponseHeader(name, existing+", "+value)
}

func (s *PBSession) RemoveResponseHeader(name string) {
	s.respHeaders.Del(name)
	s.removedResp[strings.ToLower(name)] = true
}

func (s *PBSession) CountResponseHeader(name string) int {
	return len(s.respHeaders.Values(name))
}

func (s *PBSession) Env(name string) (string, bool) {
	v, ok := s.env[name]
	return v, ok
}

func (s *PBSession) SetEnv(name, value string) {
	s.env[name] = value
}

func (s *PBSession) Status() int {
	return s.status
}

func (s *PBSession) SetStatus(code int) {
	s.status = code
}

func (s *PBSession) URI() string {
	if s.rewrittenURI != "" {
		return s.rewrittenURI
	}
	return s.event.Request.URL.Path
}

func (s *PBSession) Method() string {
	return s.event.Request.Method
}

func (s *PBSession) DocumentRoot() string {
	return s.docRoot
}

func (s *PBSession) ClientIP() string {
	addr := s.event.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (s *PBSession) SetPhpIni(rec session.PhpIniRecord) {
	s.phpIni = append(s.phpIni, rec)
}

func (s *PBSession) SetResponseBody(body []byte) {
	s.body = body
	s.bodySet = true
}

func (s *PBSession) SetDirectoryOptions(opts session.DirectoryOptions) {
	s.dirOpts = opts
}

func (s *PBSession) DirectoryOptions() session.DirectoryOptions {
	return s.dirOpts
}

func (s *PBSession) RewriteURI(uri string) {
	s.rewrittenURI = uri
}

func (s *PBSession) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *PBSession) Authorization() (string, bool) {
	return s.RequestHeader("Authorization")
}

func (s *PBSession) SetWWWAuthenticate(value string) {
	s.wwwAuth = value
}

func (s *PBSession) HasModule(name string) bool {
	return s.modules[name]
}

func (s *PBSession) Log(level session.LogLevel, format string, args ...any) {
	if s.log != nil {
		s.log(level, format, args...)
	}
}

// Flush applies every staged mutation to the underlying request event. It
// must be called exactly once, after both dispatcher phases have run.
func (s *PBSession) Flush() error {
	for k, vs := range s.respHeaders {
		for _, v := range vs {
			s.event.Response.Header().Add(k, v)
		}
	}
	for name := range s.removedResp {
		s.event.Response.Header().Del(name)
	}
	if s.wwwAuth != "" {
		s.event.Response.Header().Set("WWW-Authenticate", s.wwwAuth)
	}

	if s.bodySet {
		s.event.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		s.event.Response.WriteHeader(s.status)
		_, err := s.event.Response.Write(s.body)
		return err
	}
	if s.status != http.StatusOK {
		s.event.Response.WriteHeader(s.status)
	}
	return nil
}

// DecodeBasicAuth is a small convenience re-exported for callers that need
// to inspect credentials outside the dispatcher (e.g. admin tooling).
func DecodeBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
