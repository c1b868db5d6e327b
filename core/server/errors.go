package server

import "fmt"

// Error type categories for structured module errors.
const (
	ErrTypeParse      = "parse_error"
	ErrTypeWalk       = "walk_error"
	ErrTypeAuth       = "auth_error"
	ErrTypeBruteForce = "brute_force_error"
	ErrTypeConfig     = "config_error"
	ErrTypeInternal   = "internal_error"
)

// ModuleError is a structured error carrying an op name, a category, an
// optional HTTP status, and the wrapped cause.
type ModuleError struct {
	Type       string
	Message    string
	Op         string
	StatusCode int
	Err        error
}

func (e *ModuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed: %v", e.Type, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ModuleError) Unwrap() error {
	return e.Err
}

// NewParseError creates a parse-phase error.
func NewParseError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeParse, Message: message, Op: op, Err: err}
}

// NewWalkError creates a directory-walk error.
func NewWalkError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeWalk, Message: message, Op: op, Err: err}
}

// NewAuthError creates an authentication error, defaulting to 401.
func NewAuthError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeAuth, Message: message, Op: op, StatusCode: 401, Err: err}
}

// NewBruteForceError creates a brute-force-protection error, defaulting to 403.
func NewBruteForceError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeBruteForce, Message: message, Op: op, StatusCode: 403, Err: err}
}

// NewConfigError creates a configuration error.
func NewConfigError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeConfig, Message: message, Op: op, Err: err}
}

// NewInternalError creates an internal error, defaulting to 500.
func NewInternalError(op, message string, err error) *ModuleError {
	return &ModuleError{Type: ErrTypeInternal, Message: message, Op: op, StatusCode: 500, Err: err}
}

// IsErrorType reports whether err is a *ModuleError of the given type.
func IsErrorType(err error, errType string) bool {
	if err == nil {
		return false
	}
	if me, ok := err.(*ModuleError); ok {
		return me.Type == errType
	}
	return false
}

// IsAuthError reports whether err is an auth ModuleError.
func IsAuthError(err error) bool { return IsErrorType(err, ErrTypeAuth) }

// IsBruteForceError reports whether err is a brute-force ModuleError.
func IsBruteForceError(err error) bool { return IsErrorType(err, ErrTypeBruteForce) }

// IsConfigError reports whether err is a config ModuleError.
func IsConfigError(err error) bool { return IsErrorType(err, ErrTypeConfig) }

// IsInternalError reports whether err is an internal ModuleError.
func IsInternalError(err error) bool { return IsErrorType(err, ErrTypeInternal) }
