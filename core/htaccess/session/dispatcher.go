package session

import (
	"time"

	"github.com/wyndcliff/htaccessd/core/htaccess/bruteforce"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// Dispatcher orchestrates a merged directive list against the two hook
// points, in the fixed order described by the configuration engine: access
// control, redirects, PHP, environment, brute-force on the request side;
// headers, FilesMatch/Files, expires, and ErrorDocument on the response
// side.
type Dispatcher struct {
	BruteForce *bruteforce.Store
	ReadFile   func(path string) ([]byte, error)
}

// NewDispatcher returns a Dispatcher backed by its own brute-force store.
func NewDispatcher(readFile func(path string) ([]byte, error)) *Dispatcher {
	return &Dispatcher{
		BruteForce: bruteforce.NewStore(),
		ReadFile:   readFile,
	}
}

// HandleRequestHeader runs the receive-request-header phase. It returns true
// if the request was short-circuited (access denied, redirect fired, auth
// failed, or brute-force blocked) and no further phase should run.
func (disp *Dispatcher) HandleRequestHeader(s Session, merged *directive.List) bool {
	filtered := RunLimitFiltered(s, merged)

	if !EvaluateAccess(s, filtered) {
		s.SetStatus(403)
		return true
	}

	switch EvaluateAuth(s, filtered, disp.ReadFile) {
	case AuthUnauthorized, AuthServerError:
		return true
	}

	if EvaluateRedirect(s, filtered) {
		return true
	}

	EvaluatePHP(s, filtered)
	EvaluateEnv(s, filtered)

	if EvaluateBruteForce(s, filtered, disp.BruteForce, time.Now()) {
		return true
	}

	return false
}

// HandleResponseHeader runs the send-response-header phase.
func (disp *Dispatcher) HandleResponseHeader(s Session, merged *directive.List) {
	filtered := RunLimitFiltered(s, merged)

	EvaluateHeaders(s, filtered)
	EvaluateFilesMatch(s, filtered)
	EvaluateDirectoryPolicy(s, filtered)
	EvaluateExpires(s, filtered, time.Now())
	EvaluateErrorDocument(s, filtered)
}
