// Package directive defines the in-memory model for a parsed .htaccess
// statement: the Kind taxonomy, the per-kind payload types, and the ordered
// List the parser, printer, cache, and walker all operate on.
package directive

// Kind identifies one of the 59 supported directive discriminants. v1 kinds
// (0-27) must never be renumbered; v2 kinds (28-58) are append-only.
type Kind int

const (
	HeaderSet Kind = iota
	HeaderUnset
	HeaderAppend
	HeaderMerge
	HeaderAdd
	RequestHeaderSet
	RequestHeaderUnset
	PhpValue
	PhpFlag
	PhpAdminValue
	PhpAdminFlag
	Order
	AllowFrom
	DenyFrom
	Redirect
	RedirectMatch
	ErrorDocument
	FilesMatch
	ExpiresActive
	ExpiresByType
	SetEnv
	SetEnvIf
	BrowserMatch
	BruteForceProtection
	BruteForceAllowedAttempts
	BruteForceWindow
	BruteForceAction
	BruteForceThrottleDuration

	// v2 — append only.
	IfModule
	Options
	Files
	HeaderAlwaysSet
	HeaderAlwaysUnset
	HeaderAlwaysAppend
	HeaderAlwaysMerge
	HeaderAlwaysAdd
	ExpiresDefault
	RequireAllGranted
	RequireAllDenied
	RequireIp
	RequireNotIp
	RequireAny
	RequireAll
	Limit
	LimitExcept
	AuthType
	AuthName
	AuthUserFile
	RequireValidUser
	AddHandler
	SetHandler
	AddType
	DirectoryIndex
	ForceType
	AddEncoding
	AddCharset
	BruteForceXForwardedFor
	BruteForceWhitelist
	BruteForceProtectPath
)

// String renders a Kind for diagnostics and the printer.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	HeaderSet:                  "Header",
	HeaderUnset:                "Header",
	HeaderAppend:               "Header",
	HeaderMerge:                "Header",
	HeaderAdd:                  "Header",
	RequestHeaderSet:           "RequestHeader",
	RequestHeaderUnset:         "RequestHeader",
	PhpValue:                   "php_value",
	PhpFlag:                    "php_flag",
	PhpAdminValue:              "php_admin_value",
	PhpAdminFlag:               "php_admin_flag",
	Order:                      "Order",
	AllowFrom:                  "Allow",
	DenyFrom:                   "Deny",
	Redirect:                   "Redirect",
	RedirectMatch:              "RedirectMatch",
	ErrorDocument:              "ErrorDocument",
	FilesMatch:                 "FilesMatch",
	ExpiresActive:              "ExpiresActive",
	ExpiresByType:              "ExpiresByType",
	SetEnv:                     "SetEnv",
	SetEnvIf:                   "SetEnvIf",
	BrowserMatch:               "BrowserMatch",
	BruteForceProtection:       "BruteForceProtection",
	BruteForceAllowedAttempts:  "BruteForceAllowedAttempts",
	BruteForceWindow:           "BruteForceWindow",
	BruteForceAction:           "BruteForceAction",
	BruteForceThrottleDuration: "BruteForceThrottleDuration",
	IfModule:                   "IfModule",
	Options:                    "Options",
	Files:                      "Files",
	HeaderAlwaysSet:            "Header",
	HeaderAlwaysUnset:          "Header",
	HeaderAlwaysAppend:         "Header",
	HeaderAlwaysMerge:          "Header",
	HeaderAlwaysAdd:            "Header",
	ExpiresDefault:             "ExpiresDefault",
	RequireAllGranted:          "Require",
	RequireAllDenied:           "Require",
	RequireIp:                  "Require",
	RequireNotIp:               "Require",
	RequireAny:                 "RequireAny",
	RequireAll:                 "RequireAll",
	Limit:                      "Limit",
	LimitExcept:                "LimitExcept",
	AuthType:                   "AuthType",
	AuthName:                   "AuthName",
	AuthUserFile:               "AuthUserFile",
	RequireValidUser:           "Require",
	AddHandler:                 "AddHandler",
	SetHandler:                 "SetHandler",
	AddType:                    "AddType",
	DirectoryIndex:             "DirectoryIndex",
	ForceType:                  "ForceType",
	AddEncoding:                "AddEncoding",
	AddCharset:                 "AddCharset",
	BruteForceXForwardedFor:    "BruteForceXForwardedFor",
	BruteForceWhitelist:        "BruteForceWhitelist",
	BruteForceProtectPath:      "BruteForceProtectPath",
}

// AclOrder is the operand of the Order directive.
type AclOrder int

const (
	AllowDeny AclOrder = iota // default deny, evaluate Allow then Deny
	DenyAllow                 // default allow, evaluate Deny then Allow
)

// BFAction is the BruteForceAction directive's operand.
type BFAction int

const (
	ActionBlock BFAction = iota
	ActionThrottle
)

// OptionFlag is a tri-state Options toggle: -1 disable, 0 untouched, +1 enable.
type OptionFlag int

const (
	FlagDisabled OptionFlag = -1
	FlagUnset    OptionFlag = 0
	FlagEnabled  OptionFlag = 1
)

// Payload carries the kind-discriminated fields. Only the arm matching the
// owning Directive's Kind is populated; the rest are zero values. Using one
// struct with optional fields (rather than an interface{} per kind) keeps
// deep-copy and free trivial and mirrors the source's tagged union.
type Payload struct {
	// acl: Order
	AclOrder AclOrder

	// redirect: Redirect, RedirectMatch
	StatusCode int
	Pattern    string

	// error_doc: ErrorDocument
	ErrorCode int

	// files_match / ifmodule / files / require_container / limit: container kinds
	Children *List

	// expires: ExpiresActive, ExpiresByType, ExpiresDefault
	Active      bool
	DurationSec int64

	// envif: SetEnvIf, BrowserMatch
	Attribute string

	// brute_force: BruteForce* family
	BFEnabled         bool
	BFAllowedAttempts int
	BFWindowSec       int
	BFAction          BFAction
	BFThrottleMs      int

	// ifmodule
	Negated bool

	// options
	Indexes        OptionFlag
	FollowSymlinks OptionFlag
	MultiViews     OptionFlag
	ExecCGI        OptionFlag

	// header_ext: Header/RequestHeader "always" modifier
	Always bool

	// limit / limit_except
	Methods string
}

// Directive is one parsed .htaccess statement.
type Directive struct {
	Kind    Kind
	Line    int
	Name    string
	Value   string
	Payload Payload
	Next    *Directive
}

// List is an owned, ordered, singly-linked list of directives. The owner
// transitively owns every node and every child list reachable through a
// container payload.
type List struct {
	Head *Directive
	Tail *Directive
	Len  int
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Append adds d to the tail of the list. d.Next is overwritten.
func (l *List) Append(d *Directive) {
	d.Next = nil
	if l.Head == nil {
		l.Head = d
		l.Tail = d
	} else {
		l.Tail.Next = d
		l.Tail = d
	}
	l.Len++
}

// Slice materializes the list into a plain slice, useful for executors that
// want random access or re-ordering without mutating the owned list.
func (l *List) Slice() []*Directive {
	if l == nil {
		return nil
	}
	out := make([]*Directive, 0, l.Len)
	for d := l.Head; d != nil; d = d.Next {
		out = append(out, d)
	}
	return out
}

// Clone performs a deep copy of the list, including every container's
// children, so a cache hit never lets a consumer mutate the cached original.
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	out := NewList()
	for d := l.Head; d != nil; d = d.Next {
		out.Append(cloneDirective(d))
	}
	return out
}

func cloneDirective(d *Directive) *Directive {
	cp := *d
	cp.Next = nil
	if d.Payload.Children != nil {
		cp.Payload.Children = d.Payload.Children.Clone()
	}
	return &cp
}

// Rebuild replaces the list's nodes with those in ds, refreshing Head/Tail/Len.
// Used by the merge algorithm to swap one node in place.
func (l *List) Rebuild(ds []*Directive) {
	l.Head, l.Tail, l.Len = nil, nil, 0
	for _, d := range ds {
		l.Append(d)
	}
}
