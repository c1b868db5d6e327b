// Package parser turns .htaccess text into an ordered directive.List.
//
// The grammar is line-oriented: comments and blank lines are skipped,
// container openers (<Name args>) push a frame, matching closers (</Name>)
// pop it, and every other non-blank line is tokenized and mapped to one of
// the 59 directive kinds. Per-line failures are recoverable: a warning is
// recorded and the line is skipped, mirroring the reference implementation's
// "never abort on recoverable errors" policy.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
)

// maxContainerDepth bounds the container nesting stack.
const maxContainerDepth = 16

// Warning is one recoverable parse failure or discarded block.
type Warning struct {
	Source string
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// Result is the outcome of Parse: the successfully parsed directives plus
// any warnings collected along the way.
type Result struct {
	Directives *directive.List
	Warnings   []Warning
}

type frame struct {
	kind     directive.Kind
	openLine int
	tagName  string // e.g. "FilesMatch", "IfModule" — for closer matching
	children []*directive.Directive
	// fields captured from the opening tag, applied to the directive once closed
	name    string
	value   string
	payload directive.Payload
}

// Parse scans text line by line and returns the directives successfully
// parsed plus any warnings. source is used only for diagnostics.
func Parse(text string, source string) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		return res
	}

	var stack []*frame
	var top []*directive.Directive // accumulator for the currently-open scope

	lines := splitLines(text)
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "</") {
			tag := closerTag(trimmed)
			if len(stack) == 0 || !strings.EqualFold(stack[len(stack)-1].tagName, tag) {
				res.Warnings = append(res.Warnings, Warning{source, lineNo,
					fmt.Sprintf("unmatched closer </%s>", tag)})
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			children := directive.NewList()
			for _, c := range f.children {
				children.Append(c)
			}
			d := &directive.Directive{
				Kind:    f.kind,
				Line:    f.openLine,
				Name:    f.name,
				Value:   f.value,
				Payload: f.payload,
			}
			d.Payload.Children = children

			if len(stack) > 0 {
				stack[len(stack)-1].children = append(stack[len(stack)-1].children, d)
			} else {
				top = append(top, d)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "<") {
			f, warn, ok := parseOpener(trimmed, lineNo, source)
			if !ok {
				res.Warnings = append(res.Warnings, warn)
				continue
			}
			if len(stack) >= maxContainerDepth {
				res.Warnings = append(res.Warnings, Warning{source, lineNo,
					fmt.Sprintf("container nesting exceeds %d levels", maxContainerDepth)})
				continue
			}
			stack = append(stack, f)
			continue
		}

		d, warn, ok := parseLine(trimmed, lineNo, source)
		if !ok {
			res.Warnings = append(res.Warnings, warn)
			continue
		}
		if len(stack) > 0 {
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, d)
		} else {
			top = append(top, d)
		}
	}

	// Any still-open frames at EOF are discarded entirely, per spec: an
	// unclosed block (and everything inside it) never reaches the result.
	for _, f := range stack {
		res.Warnings = append(res.Warnings, Warning{source, f.openLine,
			fmt.Sprintf("unclosed <%s>", f.tagName)})
	}
	// The outermost unclosed frame discards everything that was nested
	// inside it, including any closed blocks collected before the file
	// ended — top only ever holds directives fully closed outside any open
	// frame, so nothing further to trim there.
	if len(top) == 0 {
		return res
	}

	out := directive.NewList()
	for _, d := range top {
		out.Append(d)
	}
	res.Directives = out
	return res
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func closerTag(trimmed string) string {
	tag := strings.TrimPrefix(trimmed, "</")
	tag = strings.TrimSuffix(tag, ">")
	return strings.TrimSpace(tag)
}

// tokenize splits a line into whitespace-delimited tokens, treating a
// "quoted string" as a single token (quotes stripped).
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case (c == ' ' || c == '\t') && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

// parseOpener handles a "<Name args...>" line, returning a pushed frame.
func parseOpener(line string, lineNo int, source string) (*frame, Warning, bool) {
	body := strings.TrimPrefix(line, "<")
	body = strings.TrimSuffix(strings.TrimSpace(body), ">")
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, Warning{source, lineNo, "empty container opener"}, false
	}
	tag := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(body, tag))

	switch {
	case strings.EqualFold(tag, "FilesMatch"):
		pattern := unquote(rest)
		return &frame{kind: directive.FilesMatch, openLine: lineNo, tagName: "FilesMatch",
			payload: directive.Payload{Pattern: pattern}}, Warning{}, true

	case strings.EqualFold(tag, "IfModule"):
		name := strings.TrimSpace(rest)
		negated := strings.HasPrefix(name, "!")
		return &frame{kind: directive.IfModule, openLine: lineNo, tagName: "IfModule",
			name: name, payload: directive.Payload{Negated: negated}}, Warning{}, true

	case strings.EqualFold(tag, "Files"):
		name := unquote(strings.TrimSpace(rest))
		return &frame{kind: directive.Files, openLine: lineNo, tagName: "Files", name: name}, Warning{}, true

	case strings.EqualFold(tag, "RequireAny"):
		return &frame{kind: directive.RequireAny, openLine: lineNo, tagName: "RequireAny"}, Warning{}, true

	case strings.EqualFold(tag, "RequireAll"):
		return &frame{kind: directive.RequireAll, openLine: lineNo, tagName: "RequireAll"}, Warning{}, true

	case strings.EqualFold(tag, "Limit"):
		methods := strings.TrimSpace(rest)
		return &frame{kind: directive.Limit, openLine: lineNo, tagName: "Limit",
			payload: directive.Payload{Methods: methods}}, Warning{}, true

	case strings.EqualFold(tag, "LimitExcept"):
		methods := strings.TrimSpace(rest)
		return &frame{kind: directive.LimitExcept, openLine: lineNo, tagName: "LimitExcept",
			payload: directive.Payload{Methods: methods}}, Warning{}, true
	}

	return nil, Warning{source, lineNo, fmt.Sprintf("unknown container <%s>", tag)}, false
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// parseLine maps one non-container directive line to a Directive.
func parseLine(line string, lineNo int, source string) (*directive.Directive, Warning, bool) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return nil, Warning{source, lineNo, "empty directive"}, false
	}
	keyword := tokens[0]
	args := tokens[1:]

	warn := func(reason string) (*directive.Directive, Warning, bool) {
		return nil, Warning{source, lineNo, reason}, false
	}

	base := func(k directive.Kind) *directive.Directive {
		return &directive.Directive{Kind: k, Line: lineNo}
	}

	switch {
	case strings.EqualFold(keyword, "Header"):
		return parseHeader(args, lineNo, false, base, warn)
	case strings.EqualFold(keyword, "RequestHeader"):
		return parseRequestHeader(args, base, warn)
	case strings.EqualFold(keyword, "php_value"):
		return parseNameValue(directive.PhpValue, args, base, warn)
	case strings.EqualFold(keyword, "php_flag"):
		return parsePhpFlag(directive.PhpFlag, args, base, warn)
	case strings.EqualFold(keyword, "php_admin_value"):
		return parseNameValue(directive.PhpAdminValue, args, base, warn)
	case strings.EqualFold(keyword, "php_admin_flag"):
		return parsePhpFlag(directive.PhpAdminFlag, args, base, warn)
	case strings.EqualFold(keyword, "Order"):
		return parseOrder(args, base, warn)
	case strings.EqualFold(keyword, "Allow"):
		return parseAllowDeny(directive.AllowFrom, args, base, warn)
	case strings.EqualFold(keyword, "Deny"):
		return parseAllowDeny(directive.DenyFrom, args, base, warn)
	case strings.EqualFold(keyword, "Redirect"):
		return parseRedirect(args, base, warn)
	case strings.EqualFold(keyword, "RedirectMatch"):
		return parseRedirectMatch(args, base, warn)
	case strings.EqualFold(keyword, "ErrorDocument"):
		return parseErrorDocument(line, args, base, warn)
	case strings.EqualFold(keyword, "ExpiresActive"):
		return parseExpiresActive(args, base, warn)
	case strings.EqualFold(keyword, "ExpiresByType"):
		return parseExpiresByType(args, base, warn)
	case strings.EqualFold(keyword, "ExpiresDefault"):
		return parseExpiresDefault(args, base, warn)
	case strings.EqualFold(keyword, "SetEnvIf"):
		return parseSetEnvIf(args, base, warn)
	case strings.EqualFold(keyword, "BrowserMatch"):
		return parseBrowserMatch(args, base, warn)
	case strings.EqualFold(keyword, "SetEnv"):
		return parseNameValue(directive.SetEnv, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceProtection"):
		return parseOnOffFlag(directive.BruteForceProtection, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceAllowedAttempts"):
		return parseBFInt(directive.BruteForceAllowedAttempts, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceWindow"):
		return parseBFInt(directive.BruteForceWindow, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceAction"):
		return parseBFAction(args, base, warn)
	case strings.EqualFold(keyword, "BruteForceThrottleDuration"):
		return parseBFInt(directive.BruteForceThrottleDuration, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceXForwardedFor"):
		return parseOnOffFlag(directive.BruteForceXForwardedFor, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceWhitelist"):
		return parseSingleValue(directive.BruteForceWhitelist, args, base, warn)
	case strings.EqualFold(keyword, "BruteForceProtectPath"):
		return parseSingleValue(directive.BruteForceProtectPath, args, base, warn)
	case strings.EqualFold(keyword, "Options"):
		return parseOptions(args, base, warn)
	case strings.EqualFold(keyword, "Require"):
		return parseRequire(args, base, warn)
	case strings.EqualFold(keyword, "AuthType"):
		return parseSingleValue(directive.AuthType, args, base, warn)
	case strings.EqualFold(keyword, "AuthName"):
		return parseSingleValue(directive.AuthName, args, base, warn)
	case strings.EqualFold(keyword, "AuthUserFile"):
		return parseSingleValue(directive.AuthUserFile, args, base, warn)
	case strings.EqualFold(keyword, "AddHandler"):
		return parseNameValue(directive.AddHandler, args, base, warn)
	case strings.EqualFold(keyword, "SetHandler"):
		return parseSingleValue(directive.SetHandler, args, base, warn)
	case strings.EqualFold(keyword, "AddType"):
		return parseNameValue(directive.AddType, args, base, warn)
	case strings.EqualFold(keyword, "DirectoryIndex"):
		return parseJoinedValue(directive.DirectoryIndex, args, base, warn)
	case strings.EqualFold(keyword, "ForceType"):
		return parseSingleValue(directive.ForceType, args, base, warn)
	case strings.EqualFold(keyword, "AddEncoding"):
		return parseNameValue(directive.AddEncoding, args, base, warn)
	case strings.EqualFold(keyword, "AddCharset"):
		return parseNameValue(directive.AddCharset, args, base, warn)
	}

	return warn(fmt.Sprintf("unknown directive %q", keyword))
}

type baseFunc func(directive.Kind) *directive.Directive
type warnFunc func(string) (*directive.Directive, Warning, bool)

func parseHeader(args []string, lineNo int, _ bool, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) == 0 {
		return warn("Header: missing subcommand")
	}
	sub := args[0]
	rest := args[1:]

	always := false
	if strings.EqualFold(sub, "always") {
		if len(rest) == 0 {
			return warn("Header always: missing subcommand")
		}
		always = true
		sub = rest[0]
		rest = rest[1:]
	}

	var kind directive.Kind
	switch {
	case strings.EqualFold(sub, "set"):
		kind = directive.HeaderSet
		if always {
			kind = directive.HeaderAlwaysSet
		}
	case strings.EqualFold(sub, "unset"):
		kind = directive.HeaderUnset
		if always {
			kind = directive.HeaderAlwaysUnset
		}
	case strings.EqualFold(sub, "append"):
		kind = directive.HeaderAppend
		if always {
			kind = directive.HeaderAlwaysAppend
		}
	case strings.EqualFold(sub, "merge"):
		kind = directive.HeaderMerge
		if always {
			kind = directive.HeaderAlwaysMerge
		}
	case strings.EqualFold(sub, "add"):
		kind = directive.HeaderAdd
		if always {
			kind = directive.HeaderAlwaysAdd
		}
	default:
		return warn(fmt.Sprintf("Header: unknown subcommand %q", sub))
	}

	d := base(kind)
	d.Payload.Always = always
	if kind == directive.HeaderUnset || kind == directive.HeaderAlwaysUnset {
		if len(rest) < 1 {
			return warn("Header unset: missing name")
		}
		d.Name = rest[0]
		return d, Warning{}, true
	}
	if len(rest) < 2 {
		return warn(fmt.Sprintf("Header %s: expected name and value", sub))
	}
	d.Name = rest[0]
	d.Value = strings.Join(rest[1:], " ")
	return d, Warning{}, true
}

func parseRequestHeader(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("RequestHeader: missing subcommand/name")
	}
	sub := args[0]
	rest := args[1:]
	switch {
	case strings.EqualFold(sub, "set"):
		if len(rest) < 2 {
			return warn("RequestHeader set: expected name and value")
		}
		d := base(directive.RequestHeaderSet)
		d.Name = rest[0]
		d.Value = strings.Join(rest[1:], " ")
		return d, Warning{}, true
	case strings.EqualFold(sub, "unset"):
		d := base(directive.RequestHeaderUnset)
		d.Name = rest[0]
		return d, Warning{}, true
	}
	return warn(fmt.Sprintf("RequestHeader: unknown subcommand %q", sub))
}

func parseNameValue(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn(fmt.Sprintf("%s: expected name and value", kind))
	}
	d := base(kind)
	d.Name = args[0]
	d.Value = strings.Join(args[1:], " ")
	return d, Warning{}, true
}

func parseSingleValue(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn(fmt.Sprintf("%s: expected a value", kind))
	}
	d := base(kind)
	d.Value = strings.Join(args, " ")
	return d, Warning{}, true
}

func parseJoinedValue(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	return parseSingleValue(kind, args, base, warn)
}

func parsePhpFlag(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn(fmt.Sprintf("%s: expected name and on/off", kind))
	}
	val := args[1]
	if !strings.EqualFold(val, "on") && !strings.EqualFold(val, "off") {
		return warn(fmt.Sprintf("%s: value must be on/off, got %q", kind, val))
	}
	d := base(kind)
	d.Name = args[0]
	d.Value = val
	return d, Warning{}, true
}

func parseOrder(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn("Order: missing operand")
	}
	operand := strings.ToLower(strings.Join(args, " "))
	operand = strings.ReplaceAll(operand, " ", "")
	operand = strings.ReplaceAll(operand, ",", "")
	d := base(directive.Order)
	switch operand {
	case "allowdeny":
		d.Payload.AclOrder = directive.AllowDeny
	case "denyallow":
		d.Payload.AclOrder = directive.DenyAllow
	default:
		return warn(fmt.Sprintf("Order: unrecognized operand %q", strings.Join(args, " ")))
	}
	return d, Warning{}, true
}

func parseAllowDeny(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	// "Allow from <cidr|all>" / "Deny from <cidr|all>"
	if len(args) < 2 || !strings.EqualFold(args[0], "from") {
		return warn(fmt.Sprintf("%s: expected \"from <cidr>\"", kind))
	}
	d := base(kind)
	d.Value = strings.Join(args[1:], " ")
	return d, Warning{}, true
}

func parseRedirect(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("Redirect: expected path and target")
	}
	status := 302
	if n, err := strconv.Atoi(args[0]); err == nil {
		status = n
		args = args[1:]
	}
	if len(args) < 2 {
		return warn("Redirect: expected path and target")
	}
	d := base(directive.Redirect)
	d.Payload.StatusCode = status
	d.Name = args[0]
	d.Value = strings.Join(args[1:], " ")
	return d, Warning{}, true
}

func parseRedirectMatch(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("RedirectMatch: expected pattern and target")
	}
	status := 302
	if n, err := strconv.Atoi(args[0]); err == nil {
		status = n
		args = args[1:]
	}
	if len(args) < 2 {
		return warn("RedirectMatch: expected pattern and target")
	}
	d := base(directive.RedirectMatch)
	d.Payload.StatusCode = status
	d.Payload.Pattern = args[0]
	d.Value = strings.Join(args[1:], " ")
	return d, Warning{}, true
}

// parseErrorDocument re-derives the remainder from the original line (not
// the whitespace-tokenized args) so a leading quote in the third argument
// survives verbatim, per the executor's quote-as-mode-marker contract.
func parseErrorDocument(line string, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("ErrorDocument: expected code and value")
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		return warn(fmt.Sprintf("ErrorDocument: bad status code %q", args[0]))
	}
	rest := line
	for _, consumed := range []string{"ErrorDocument", args[0]} {
		idx := indexFold(rest, consumed)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(consumed):]
	}
	rest = strings.TrimLeft(rest, " \t")
	d := base(directive.ErrorDocument)
	d.Payload.ErrorCode = code
	d.Value = rest
	return d, Warning{}, true
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

func parseExpiresActive(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn("ExpiresActive: missing On/Off")
	}
	d := base(directive.ExpiresActive)
	d.Payload.Active = strings.EqualFold(args[0], "on")
	return d, Warning{}, true
}

func parseExpiresByType(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("ExpiresByType: expected MIME type and duration")
	}
	durStr := strings.Join(args[1:], " ")
	secs, err := htregex.ParseExpires(durStr)
	if err != nil {
		return warn(fmt.Sprintf("ExpiresByType: %v", err))
	}
	d := base(directive.ExpiresByType)
	d.Name = args[0]
	d.Value = durStr
	d.Payload.DurationSec = secs
	return d, Warning{}, true
}

func parseExpiresDefault(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn("ExpiresDefault: missing duration")
	}
	durStr := strings.Join(args, " ")
	secs, err := htregex.ParseExpires(durStr)
	if err != nil {
		return warn(fmt.Sprintf("ExpiresDefault: %v", err))
	}
	d := base(directive.ExpiresDefault)
	d.Value = durStr
	d.Payload.DurationSec = secs
	return d, Warning{}, true
}

func parseSetEnvIf(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 3 {
		return warn("SetEnvIf: expected attribute, pattern, name=value")
	}
	name, value, ok := splitNameValue(args[len(args)-1])
	if !ok {
		return warn("SetEnvIf: expected name=value as last token")
	}
	d := base(directive.SetEnvIf)
	d.Payload.Attribute = args[0]
	d.Payload.Pattern = strings.Join(args[1:len(args)-1], " ")
	d.Name = name
	d.Value = value
	return d, Warning{}, true
}

func parseBrowserMatch(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 2 {
		return warn("BrowserMatch: expected pattern, name=value")
	}
	name, value, ok := splitNameValue(args[len(args)-1])
	if !ok {
		return warn("BrowserMatch: expected name=value as last token")
	}
	d := base(directive.BrowserMatch)
	d.Payload.Attribute = "User-Agent"
	d.Payload.Pattern = strings.Join(args[:len(args)-1], " ")
	d.Name = name
	d.Value = value
	return d, Warning{}, true
}

func splitNameValue(s string) (string, string, bool) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func parseOnOffFlag(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn(fmt.Sprintf("%s: missing On/Off", kind))
	}
	d := base(kind)
	d.Payload.BFEnabled = strings.EqualFold(args[0], "on")
	return d, Warning{}, true
}

func parseBFInt(kind directive.Kind, args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn(fmt.Sprintf("%s: missing integer value", kind))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return warn(fmt.Sprintf("%s: expected non-negative integer, got %q", kind, args[0]))
	}
	d := base(kind)
	switch kind {
	case directive.BruteForceAllowedAttempts:
		d.Payload.BFAllowedAttempts = n
	case directive.BruteForceWindow:
		d.Payload.BFWindowSec = n
	case directive.BruteForceThrottleDuration:
		d.Payload.BFThrottleMs = n
	}
	return d, Warning{}, true
}

func parseBFAction(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) < 1 {
		return warn("BruteForceAction: missing block/throttle")
	}
	d := base(directive.BruteForceAction)
	switch strings.ToLower(args[0]) {
	case "block":
		d.Payload.BFAction = directive.ActionBlock
	case "throttle":
		d.Payload.BFAction = directive.ActionThrottle
	default:
		return warn(fmt.Sprintf("BruteForceAction: unknown action %q", args[0]))
	}
	return d, Warning{}, true
}

func parseOptions(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) == 0 {
		return warn("Options: no flags given")
	}
	d := base(directive.Options)
	any := false
	for _, tok := range args {
		if len(tok) < 2 || (tok[0] != '+' && tok[0] != '-') {
			continue // bare flag form: skipped without a warning, rest still applies
		}
		sign := directive.FlagEnabled
		if tok[0] == '-' {
			sign = directive.FlagDisabled
		}
		switch strings.ToLower(tok[1:]) {
		case "indexes":
			d.Payload.Indexes = sign
		case "followsymlinks":
			d.Payload.FollowSymlinks = sign
		case "multiviews":
			d.Payload.MultiViews = sign
		case "execcgi":
			d.Payload.ExecCGI = sign
		default:
			continue // unknown flag name: skipped without a warning
		}
		any = true
	}
	if !any {
		return warn("Options: no recognized flags")
	}
	return d, Warning{}, true
}

func parseRequire(args []string, base baseFunc, warn warnFunc) (*directive.Directive, Warning, bool) {
	if len(args) == 0 {
		return warn("Require: missing condition")
	}
	switch {
	case strings.EqualFold(args[0], "all") && len(args) >= 2 && strings.EqualFold(args[1], "granted"):
		return base(directive.RequireAllGranted), Warning{}, true
	case strings.EqualFold(args[0], "all") && len(args) >= 2 && strings.EqualFold(args[1], "denied"):
		return base(directive.RequireAllDenied), Warning{}, true
	case strings.EqualFold(args[0], "ip") && len(args) >= 2:
		d := base(directive.RequireIp)
		d.Value = args[1]
		return d, Warning{}, true
	case strings.EqualFold(args[0], "not") && len(args) >= 3 && strings.EqualFold(args[1], "ip"):
		d := base(directive.RequireNotIp)
		d.Value = args[2]
		return d, Warning{}, true
	case strings.EqualFold(args[0], "valid-user"):
		return base(directive.RequireValidUser), Warning{}, true
	}
	return warn(fmt.Sprintf("Require: unrecognized condition %q", strings.Join(args, " ")))
}
