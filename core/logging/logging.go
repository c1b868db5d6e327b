// Package logging bridges the htaccessd dispatcher's session.Session.Log
// calls into PocketBase's structured app logger, and installs a request
// middleware that stamps every request with a trace ID in the same fashion
// app-wide request logging does.
package logging

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/security"

	"github.com/wyndcliff/htaccessd/core/htaccess/session"
)

// TraceIDHeader is set on both the request and response so downstream log
// lines and client-side correlation can share one identifier.
const TraceIDHeader = "X-Htaccessd-Trace-ID"

// SessionLogger adapts session.Session.Log to the app's slog-backed logger,
// tagging every line with the request's trace ID.
type SessionLogger struct {
	app     core.App
	traceID string
}

// NewSessionLogger returns a logger scoped to one request.
func NewSessionLogger(app core.App, traceID string) *SessionLogger {
	return &SessionLogger{app: app, traceID: traceID}
}

// Log implements the session.Session logging sink contract (DEBUG/INFO/WARN/
// ERROR with a printf-style message).
func (l *SessionLogger) Log(level session.LogLevel, format string, args ...any) {
	logger := l.app.Logger().With("trace_id", l.traceID, "component", "htaccess")
	msg := fmt.Sprintf(format, args...)
	switch level {
	case session.LogDebug:
		logger.Debug(msg)
	case session.LogInfo:
		logger.Info(msg)
	case session.LogWarn:
		logger.Warn(msg)
	case session.LogError:
		logger.Error(msg)
	}
}

// SetupRequestLogging installs a trace-ID-stamping, duration-logging
// middleware on every request, mirroring the module's app-wide logging
// conventions so .htaccess-driven requests show up in the same log stream.
func SetupRequestLogging(app *pocketbase.PocketBase) {
	appLogger := app.Logger().With(
		"pid", os.Getpid(),
		"start_time", time.Now().Format(time.RFC3339),
	)
	appLogger.Info("htaccessd starting up", "event", "startup")

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(func(c *core.RequestEvent) error {
			traceID := security.RandomString(18)
			c.Request.Header.Set(TraceIDHeader, traceID)
			c.Response.Header().Set(TraceIDHeader, traceID)

			start := time.Now()
			err := c.Next()
			duration := time.Since(start)

			status := http.StatusOK
			if rw, ok := c.Response.(interface{ Status() int }); ok {
				status = rw.Status()
			}

			app.Logger().With(
				"trace_id", traceID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
			).Info("request handled")

			return err
		})
		return e.Next()
	})
}
