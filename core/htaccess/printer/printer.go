// Package printer renders a directive.List back into canonical .htaccess
// text. Every directive kind the parser accepts has a matching case here;
// the round trip parse->print->parse always yields an equivalent list.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// Print renders the full list, one directive per line (containers spanning
// multiple lines with two-space indentation per nesting level).
func Print(list *directive.List) string {
	var b strings.Builder
	printList(&b, list, 0)
	return b.String()
}

func printList(b *strings.Builder, list *directive.List, depth int) {
	if list == nil {
		return
	}
	for _, d := range list.Slice() {
		printOne(b, d, depth)
	}
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func printOne(b *strings.Builder, d *directive.Directive, depth int) {
	switch d.Kind {
	case directive.HeaderSet, directive.HeaderUnset, directive.HeaderAppend, directive.HeaderMerge, directive.HeaderAdd,
		directive.HeaderAlwaysSet, directive.HeaderAlwaysUnset, directive.HeaderAlwaysAppend, directive.HeaderAlwaysMerge, directive.HeaderAlwaysAdd:
		printHeader(b, d, depth)
	case directive.RequestHeaderSet:
		indent(b, depth)
		fmt.Fprintf(b, "RequestHeader set %s %s\n", d.Name, d.Value)
	case directive.RequestHeaderUnset:
		indent(b, depth)
		fmt.Fprintf(b, "RequestHeader unset %s\n", d.Name)
	case directive.PhpValue:
		printKV(b, depth, "php_value", d.Name, d.Value)
	case directive.PhpFlag:
		printKV(b, depth, "php_flag", d.Name, d.Value)
	case directive.PhpAdminValue:
		printKV(b, depth, "php_admin_value", d.Name, d.Value)
	case directive.PhpAdminFlag:
		printKV(b, depth, "php_admin_flag", d.Name, d.Value)
	case directive.Order:
		indent(b, depth)
		if d.Payload.AclOrder == directive.AllowDeny {
			b.WriteString("Order Allow,Deny\n")
		} else {
			b.WriteString("Order Deny,Allow\n")
		}
	case directive.AllowFrom:
		indent(b, depth)
		fmt.Fprintf(b, "Allow from %s\n", d.Value)
	case directive.DenyFrom:
		indent(b, depth)
		fmt.Fprintf(b, "Deny from %s\n", d.Value)
	case directive.Redirect:
		indent(b, depth)
		if d.Payload.StatusCode == 302 {
			fmt.Fprintf(b, "Redirect %s %s\n", d.Name, d.Value)
		} else {
			fmt.Fprintf(b, "Redirect %d %s %s\n", d.Payload.StatusCode, d.Name, d.Value)
		}
	case directive.RedirectMatch:
		indent(b, depth)
		if d.Payload.StatusCode == 302 {
			fmt.Fprintf(b, "RedirectMatch %s %s\n", d.Payload.Pattern, d.Value)
		} else {
			fmt.Fprintf(b, "RedirectMatch %d %s %s\n", d.Payload.StatusCode, d.Payload.Pattern, d.Value)
		}
	case directive.ErrorDocument:
		indent(b, depth)
		fmt.Fprintf(b, "ErrorDocument %d %s\n", d.Payload.ErrorCode, d.Value)
	case directive.FilesMatch:
		indent(b, depth)
		fmt.Fprintf(b, "<FilesMatch \"%s\">\n", d.Payload.Pattern)
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</FilesMatch>\n")
	case directive.ExpiresActive:
		indent(b, depth)
		if d.Payload.Active {
			b.WriteString("ExpiresActive On\n")
		} else {
			b.WriteString("ExpiresActive Off\n")
		}
	case directive.ExpiresByType:
		indent(b, depth)
		fmt.Fprintf(b, "ExpiresByType %s \"%s\"\n", d.Name, d.Value)
	case directive.ExpiresDefault:
		indent(b, depth)
		fmt.Fprintf(b, "ExpiresDefault \"%s\"\n", d.Value)
	case directive.SetEnv:
		printKV(b, depth, "SetEnv", d.Name, d.Value)
	case directive.SetEnvIf:
		indent(b, depth)
		fmt.Fprintf(b, "SetEnvIf %s %s %s=%s\n", d.Payload.Attribute, d.Payload.Pattern, d.Name, d.Value)
	case directive.BrowserMatch:
		indent(b, depth)
		fmt.Fprintf(b, "BrowserMatch %s %s=%s\n", d.Payload.Pattern, d.Name, d.Value)
	case directive.BruteForceProtection:
		printOnOff(b, depth, "BruteForceProtection", d.Payload.BFEnabled)
	case directive.BruteForceAllowedAttempts:
		indent(b, depth)
		fmt.Fprintf(b, "BruteForceAllowedAttempts %d\n", d.Payload.BFAllowedAttempts)
	case directive.BruteForceWindow:
		indent(b, depth)
		fmt.Fprintf(b, "BruteForceWindow %d\n", d.Payload.BFWindowSec)
	case directive.BruteForceAction:
		indent(b, depth)
		if d.Payload.BFAction == directive.ActionBlock {
			b.WriteString("BruteForceAction Block\n")
		} else {
			b.WriteString("BruteForceAction Throttle\n")
		}
	case directive.BruteForceThrottleDuration:
		indent(b, depth)
		fmt.Fprintf(b, "BruteForceThrottleDuration %d\n", d.Payload.BFThrottleMs)
	case directive.BruteForceXForwardedFor:
		printOnOff(b, depth, "BruteForceXForwardedFor", d.Payload.BFEnabled)
	case directive.BruteForceWhitelist:
		indent(b, depth)
		fmt.Fprintf(b, "BruteForceWhitelist %s\n", d.Value)
	case directive.BruteForceProtectPath:
		indent(b, depth)
		fmt.Fprintf(b, "BruteForceProtectPath %s\n", d.Value)

	// v2 kinds: no original printer source survives for these; format
	// follows the same conventions (container open/close, indent, trailing
	// newline) established above.
	case directive.IfModule:
		indent(b, depth)
		name := d.Name
		if d.Payload.Negated && !strings.HasPrefix(name, "!") {
			name = "!" + name
		}
		fmt.Fprintf(b, "<IfModule %s>\n", name)
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</IfModule>\n")
	case directive.Files:
		indent(b, depth)
		fmt.Fprintf(b, "<Files \"%s\">\n", d.Name)
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</Files>\n")
	case directive.Options:
		indent(b, depth)
		b.WriteString("Options")
		for _, f := range []struct {
			name string
			flag directive.OptionFlag
		}{
			{"Indexes", d.Payload.Indexes},
			{"FollowSymLinks", d.Payload.FollowSymlinks},
			{"MultiViews", d.Payload.MultiViews},
			{"ExecCGI", d.Payload.ExecCGI},
		} {
			switch f.flag {
			case directive.FlagEnabled:
				fmt.Fprintf(b, " +%s", f.name)
			case directive.FlagDisabled:
				fmt.Fprintf(b, " -%s", f.name)
			}
		}
		b.WriteString("\n")
	case directive.RequireAllGranted:
		indent(b, depth)
		b.WriteString("Require all granted\n")
	case directive.RequireAllDenied:
		indent(b, depth)
		b.WriteString("Require all denied\n")
	case directive.RequireIp:
		indent(b, depth)
		fmt.Fprintf(b, "Require ip %s\n", d.Value)
	case directive.RequireNotIp:
		indent(b, depth)
		fmt.Fprintf(b, "Require not ip %s\n", d.Value)
	case directive.RequireValidUser:
		indent(b, depth)
		b.WriteString("Require valid-user\n")
	case directive.RequireAny:
		indent(b, depth)
		b.WriteString("<RequireAny>\n")
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</RequireAny>\n")
	case directive.RequireAll:
		indent(b, depth)
		b.WriteString("<RequireAll>\n")
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</RequireAll>\n")
	case directive.Limit:
		indent(b, depth)
		fmt.Fprintf(b, "<Limit %s>\n", d.Payload.Methods)
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</Limit>\n")
	case directive.LimitExcept:
		indent(b, depth)
		fmt.Fprintf(b, "<LimitExcept %s>\n", d.Payload.Methods)
		printList(b, d.Payload.Children, depth+1)
		indent(b, depth)
		b.WriteString("</LimitExcept>\n")
	case directive.AuthType:
		indent(b, depth)
		fmt.Fprintf(b, "AuthType %s\n", d.Value)
	case directive.AuthName:
		indent(b, depth)
		fmt.Fprintf(b, "AuthName \"%s\"\n", d.Value)
	case directive.AuthUserFile:
		indent(b, depth)
		fmt.Fprintf(b, "AuthUserFile %s\n", d.Value)
	case directive.AddHandler:
		printKV(b, depth, "AddHandler", d.Name, d.Value)
	case directive.SetHandler:
		indent(b, depth)
		fmt.Fprintf(b, "SetHandler %s\n", d.Value)
	case directive.AddType:
		printKV(b, depth, "AddType", d.Name, d.Value)
	case directive.DirectoryIndex:
		indent(b, depth)
		fmt.Fprintf(b, "DirectoryIndex %s\n", d.Value)
	case directive.ForceType:
		indent(b, depth)
		fmt.Fprintf(b, "ForceType %s\n", d.Value)
	case directive.AddEncoding:
		printKV(b, depth, "AddEncoding", d.Name, d.Value)
	case directive.AddCharset:
		printKV(b, depth, "AddCharset", d.Name, d.Value)

	default:
		// unrecognized kind: skip silently, mirroring the reference printer
	}
}

func printHeader(b *strings.Builder, d *directive.Directive, depth int) {
	sub := headerSub(d.Kind)
	prefix := "Header"
	if d.Payload.Always {
		prefix = "Header always"
	}
	indent(b, depth)
	if sub == "unset" {
		fmt.Fprintf(b, "%s unset %s\n", prefix, d.Name)
		return
	}
	fmt.Fprintf(b, "%s %s %s %s\n", prefix, sub, d.Name, d.Value)
}

func headerSub(k directive.Kind) string {
	switch k {
	case directive.HeaderSet, directive.HeaderAlwaysSet:
		return "set"
	case directive.HeaderUnset, directive.HeaderAlwaysUnset:
		return "unset"
	case directive.HeaderAppend, directive.HeaderAlwaysAppend:
		return "append"
	case directive.HeaderMerge, directive.HeaderAlwaysMerge:
		return "merge"
	case directive.HeaderAdd, directive.HeaderAlwaysAdd:
		return "add"
	}
	return "set"
}

func printKV(b *strings.Builder, depth int, keyword, name, value string) {
	indent(b, depth)
	fmt.Fprintf(b, "%s %s %s\n", keyword, name, value)
}

func printOnOff(b *strings.Builder, depth int, keyword string, on bool) {
	indent(b, depth)
	if on {
		fmt.Fprintf(b, "%s On\n", keyword)
	} else {
		fmt.Fprintf(b, "%s Off\n", keyword)
	}
}

// FormatInt is a small helper kept for executors that need the same integer
// rendering the printer uses (e.g. synthesizing env var values).
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
