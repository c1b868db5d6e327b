// Package server wires the htaccess engine (walker, cache, brute-force
// store, dispatcher) into a PocketBase application, following the same
// functional-options / Start() shape the host module uses for its own
// server wrapper.
package server

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/wyndcliff/htaccessd/core/htaccess/bruteforce"
	"github.com/wyndcliff/htaccessd/core/htaccess/cache"
	"github.com/wyndcliff/htaccessd/core/htaccess/session"
	"github.com/wyndcliff/htaccessd/core/htaccess/walker"
	"github.com/wyndcliff/htaccessd/core/logging"
	"github.com/wyndcliff/htaccessd/core/monitoring"
)

// Stats tracks aggregate request counters, mirroring the host module's own
// atomic-counter server stats.
type Stats struct {
	StartTime         time.Time
	TotalRequests     atomic.Uint64
	ActiveConnections atomic.Int32
	TotalBlocked      atomic.Uint64
	TotalErrors       atomic.Uint64
}

// Server wraps a PocketBase app with the .htaccess engine bound to its
// request lifecycle.
type Server struct {
	app        *pocketbase.PocketBase
	options    *options
	stats      *Stats
	recorder   *monitoring.Recorder
	walker     *walker.Walker
	cache      *cache.Cache
	bruteforce *bruteforce.Store
	dispatcher *session.Dispatcher
	modules    map[string]bool
}

// New constructs a Server. Options configure document root, cache sizing,
// and how the underlying PocketBase instance is obtained.
func New(opts ...Option) *Server {
	o := &options{docRoot: "./pb_public", cacheBuckets: 64}
	for _, opt := range opts {
		opt(o)
	}

	var pbApp *pocketbase.PocketBase
	if o.pocketbase != nil {
		pbApp = o.pocketbase
	} else if o.config != nil {
		pbApp = pocketbase.NewWithConfig(*o.config)
	} else {
		pbApp = pocketbase.NewWithConfig(pocketbase.Config{DefaultDev: o.developerMode})
	}

	c := cache.New(o.cacheBuckets)
	recorder := monitoring.NewRecorder(200)

	return &Server{
		app:        pbApp,
		options:    o,
		stats:      &Stats{StartTime: time.Now()},
		recorder:   recorder,
		walker:     walker.New(c).WithRecorder(monitoring.WalkerAdapter{Recorder: recorder}),
		cache:      c,
		bruteforce: bruteforce.NewStore(),
		dispatcher: session.NewDispatcher(os.ReadFile),
		modules:    map[string]bool{"mod_rewrite": true, "mod_headers": true, "mod_expires": true},
	}
}

// App returns the underlying PocketBase instance.
func (s *Server) App() *pocketbase.PocketBase {
	return s.app
}

// Stats returns the server's running counters.
func (s *Server) Stats() *Stats {
	return s.stats
}

// Recorder returns the engine-event recorder, for diagnostics endpoints.
func (s *Server) Recorder() *monitoring.Recorder {
	return s.recorder
}

// Start wires the middleware and starts the PocketBase application.
func (s *Server) Start() error {
	app := s.app
	logging.SetupRequestLogging(app)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(func(c *core.RequestEvent) error {
			s.stats.ActiveConnections.Add(1)
			s.stats.TotalRequests.Add(1)
			defer s.stats.ActiveConnections.Add(-1)

			traceID := c.Request.Header.Get(logging.TraceIDHeader)
			logSink := logging.NewSessionLogger(app, traceID)

			docRoot, err := filepath.Abs(s.options.docRoot)
			if err != nil {
				return NewConfigError("resolve_doc_root", "document root could not be resolved", err)
			}

			targetDir := filepath.Dir(filepath.Join(docRoot, c.Request.URL.Path))
			merged, warnings, err := s.walker.Resolve(docRoot, targetDir)
			for _, w := range warnings {
				app.Logger().Warn("htaccess warning", "path", w.Path, "reason", w.Reason)
			}
			if err != nil {
				s.stats.TotalErrors.Add(1)
				return NewWalkError("resolve_htaccess", "failed to resolve .htaccess hierarchy", err)
			}

			sess := NewPBSession(c, docRoot, s.modules, logSink.Log)

			if merged != nil {
				stop := s.dispatcher.HandleRequestHeader(sess, merged)
				if stop {
					s.stats.TotalBlocked.Add(1)
					return sess.Flush()
				}
			}

			nextErr := c.Next()

			if merged != nil {
				s.dispatcher.HandleResponseHeader(sess, merged)
				if flushErr := sess.Flush(); flushErr != nil && nextErr == nil {
					nextErr = flushErr
				}
			}

			if nextErr != nil {
				s.stats.TotalErrors.Add(1)
			}
			return nextErr
		})

		s.registerHealthRoute(e)

		return e.Next()
	})

	if err := app.Start(); err != nil {
		return NewInternalError("server_start", "failed to start server", err)
	}
	return nil
}

// HealthResponse is the JSON shape served at /_/htaccessd/health.
type HealthResponse struct {
	Status            string                         `json:"status"`
	StartTime         time.Time                      `json:"start_time"`
	TotalRequests     uint64                         `json:"total_requests"`
	ActiveConnections int32                          `json:"active_connections"`
	TotalBlocked      uint64                         `json:"total_blocked"`
	TotalErrors       uint64                         `json:"total_errors"`
	CacheEntries      int                            `json:"cache_entries"`
	CacheHitRatio     float64                        `json:"cache_hit_ratio"`
	EventCounts       map[monitoring.EventKind]int64 `json:"event_counts"`
}

func (s *Server) registerHealthRoute(e *core.ServeEvent) {
	e.Router.GET("/_/htaccessd/health", func(c *core.RequestEvent) error {
		resp := HealthResponse{
			Status:            "ok",
			StartTime:         s.stats.StartTime,
			TotalRequests:     s.stats.TotalRequests.Load(),
			ActiveConnections: s.stats.ActiveConnections.Load(),
			TotalBlocked:      s.stats.TotalBlocked.Load(),
			TotalErrors:       s.stats.TotalErrors.Load(),
			CacheEntries:      s.cache.Stats().Entries,
			CacheHitRatio:     s.recorder.CacheHitRatio(),
			EventCounts:       s.recorder.Counts(),
		}
		return c.JSON(200, resp)
	})
}
