package htregex

import (
	"net"
	"strings"
)

// CIDR is a parsed IPv4 range used by AllowFrom/DenyFrom/Require-family and
// the brute-force whitelist. The literal "all" matches every address.
type CIDR struct {
	all   bool
	ipnet *net.IPNet
}

// ParseCIDR accepts "all", a bare IPv4 address (treated as a /32), or an
// "a.b.c.d/prefix" range.
func ParseCIDR(s string) (CIDR, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return CIDR{all: true}, nil
	}
	if !strings.Contains(s, "/") {
		s += "/32"
	}
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return CIDR{}, err
	}
	return CIDR{ipnet: ipnet}, nil
}

// Contains reports whether ip falls inside the range.
func (c CIDR) Contains(ip string) bool {
	if c.all {
		return true
	}
	if c.ipnet == nil {
		return false
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	return c.ipnet.Contains(parsed)
}

// ParseList splits a whitespace/comma separated list of CIDRs (used by the
// brute-force Whitelist directive), skipping and ignoring malformed entries.
func ParseList(s string) []CIDR {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]CIDR, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if c, err := ParseCIDR(f); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// AnyContains reports whether ip is contained in any of the given ranges.
func AnyContains(ranges []CIDR, ip string) bool {
	for _, c := range ranges {
		if c.Contains(ip) {
			return true
		}
	}
	return false
}

// LeftmostIP returns the leftmost comma-separated hop of an X-Forwarded-For
// value, trimmed of surrounding whitespace. Empty input returns "".
func LeftmostIP(xff string) string {
	if xff == "" {
		return ""
	}
	parts := strings.Split(xff, ",")
	return strings.TrimSpace(parts[0])
}
