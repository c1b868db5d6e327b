package server

import (
	"errors"

	"github.com/pocketbase/pocketbase"
)

// options are for internal argument passing when constructing a server.
type options struct {
	config         *pocketbase.Config
	pocketbase     *pocketbase.PocketBase
	developerMode  bool
	docRoot        string
	cacheBuckets   int
}

// ErrConfigurationConflict is the value WithPocketbase panics with when a
// WithConfig option was applied before it.
var ErrConfigurationConflict = errors.New(
	"WithConfig cannot be used together with WithPocketbase, since the latter already carries an initialized pocketbase.Config; pass your config into pocketbase.NewWithConfig instead",
)

// Option is the functional option type for modifying options.
type Option func(*options)

// WithConfig sets the PocketBase configuration to use.
func WithConfig(config *pocketbase.Config) Option {
	return func(o *options) {
		o.config = config
	}
}

// WithPocketbase sets a fully initialized PocketBase instance to use.
func WithPocketbase(pb *pocketbase.PocketBase) Option {
	return func(o *options) {
		if o.config != nil {
			pb.Logger().Error(ErrConfigurationConflict.Error())
			panic(ErrConfigurationConflict)
		}
		o.pocketbase = pb
	}
}

// WithMode sets whether developer mode is enabled.
func WithMode(developerMode bool) Option {
	return func(o *options) {
		o.developerMode = developerMode
	}
}

// WithDocumentRoot sets the directory under which .htaccess hierarchies are
// resolved. Defaults to "./pb_public".
func WithDocumentRoot(path string) Option {
	return func(o *options) {
		o.docRoot = path
	}
}

// WithCacheBuckets sets the parse cache's hash table size.
func WithCacheBuckets(n int) Option {
	return func(o *options) {
		o.cacheBuckets = n
	}
}

// InDeveloperMode is a shortcut to enable developer mode.
func InDeveloperMode() Option {
	return func(o *options) {
		o.developerMode = true
	}
}
