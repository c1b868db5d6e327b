package session

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
	"github.com/wyndcliff/htaccessd/core/htaccess/htregex"
	"golang.org/x/crypto/bcrypt"
)

// EvaluateAccess applies the Order/Allow/Deny/Require family from the merged
// list against the session's client IP. It returns true if the request is
// allowed to proceed.
func EvaluateAccess(s Session, list *directive.List) bool {
	if list == nil {
		return true
	}
	ip := s.ClientIP()
	ds := list.Slice()

	order := directive.AllowDeny
	var allows, denies []htregex.CIDR
	var requireNodes []*directive.Directive

	for _, d := range ds {
		switch d.Kind {
		case directive.Order:
			order = d.Payload.AclOrder
		case directive.AllowFrom:
			if c, err := htregex.ParseCIDR(d.Value); err == nil {
				allows = append(allows, c)
			}
		case directive.DenyFrom:
			if c, err := htregex.ParseCIDR(d.Value); err == nil {
				denies = append(denies, c)
			}
		case directive.RequireAllGranted, directive.RequireAllDenied,
			directive.RequireIp, directive.RequireNotIp,
			directive.RequireAny, directive.RequireAll, directive.RequireValidUser:
			requireNodes = append(requireNodes, d)
		}
	}

	aclOK := true
	if len(allows) > 0 || len(denies) > 0 {
		allowMatch := htregex.AnyContains(allows, ip)
		denyMatch := htregex.AnyContains(denies, ip)
		if order == directive.AllowDeny {
			aclOK = allowMatch && !denyMatch
		} else {
			aclOK = !denyMatch || allowMatch
		}
	}
	if !aclOK {
		return false
	}

	for _, req := range requireNodes {
		if req.Kind == directive.RequireValidUser {
			continue // handled by EvaluateAuth
		}
		if !evalRequire(req, ip) {
			return false
		}
	}
	return true
}

func evalRequire(d *directive.Directive, ip string) bool {
	switch d.Kind {
	case directive.RequireAllGranted:
		return true
	case directive.RequireAllDenied:
		return false
	case directive.RequireIp:
		c, err := htregex.ParseCIDR(d.Value)
		return err == nil && c.Contains(ip)
	case directive.RequireNotIp:
		c, err := htregex.ParseCIDR(d.Value)
		return err != nil || !c.Contains(ip)
	case directive.RequireAny:
		for _, child := range d.Payload.Children.Slice() {
			if evalRequire(child, ip) {
				return true
			}
		}
		return len(d.Payload.Children.Slice()) == 0
	case directive.RequireAll:
		for _, child := range d.Payload.Children.Slice() {
			if !evalRequire(child, ip) {
				return false
			}
		}
		return true
	}
	return true
}

// AuthOutcome is the result of evaluating the Basic auth family.
type AuthOutcome int

const (
	AuthNotRequired AuthOutcome = iota
	AuthGranted
	AuthUnauthorized
	AuthServerError
)

// EvaluateAuth implements the AuthType/AuthName/AuthUserFile/RequireValidUser
// family. readUserFile is injected so tests don't need a real filesystem.
func EvaluateAuth(s Session, list *directive.List, readUserFile func(path string) ([]byte, error)) AuthOutcome {
	if list == nil {
		return AuthNotRequired
	}
	var authType, authName, userFile string
	requireValidUser := false
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.AuthType:
			authType = d.Value
		case directive.AuthName:
			authName = d.Value
		case directive.AuthUserFile:
			userFile = d.Value
		case directive.RequireValidUser:
			requireValidUser = true
		}
	}
	if !strings.EqualFold(authType, "Basic") || !requireValidUser {
		return AuthNotRequired
	}
	if userFile == "" {
		s.SetStatus(500)
		s.Log(LogError, "Basic auth: AuthUserFile missing while Require valid-user is set")
		return AuthServerError
	}

	hdr, ok := s.Authorization()
	user, pass, parseOK := parseBasicAuth(hdr)
	if !ok || !parseOK {
		unauthorize(s, authName)
		return AuthUnauthorized
	}

	content, err := readUserFile(userFile)
	if err != nil {
		s.SetStatus(500)
		s.Log(LogError, "Basic auth: failed to read AuthUserFile %s: %v", userFile, err)
		return AuthServerError
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		fileUser, hash := line[:idx], line[idx+1:]
		if fileUser != user {
			continue
		}
		if verifyPassword(pass, hash) {
			return AuthGranted
		}
		unauthorize(s, authName)
		return AuthUnauthorized
	}
	unauthorize(s, authName)
	return AuthUnauthorized
}

func unauthorize(s Session, realm string) {
	s.SetWWWAuthenticate(fmt.Sprintf(`Basic realm="%s"`, realm))
	s.SetStatus(401)
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}
	idx := strings.IndexByte(string(raw), ':')
	if idx < 0 {
		return "", "", false
	}
	return string(raw[:idx]), string(raw[idx+1:]), true
}

// verifyPassword accepts $2y$/$2a$/$2b$ bcrypt, $apr1$ MD5, and classic
// crypt(3)-DES hashes, matching the three formats the reference auth
// implementation supports.
func verifyPassword(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$2y$"), strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case strings.HasPrefix(hash, "$apr1$"):
		return subtle.ConstantTimeCompare([]byte(apr1MD5(password, hash)), []byte(hash)) == 1
	default:
		return subtle.ConstantTimeCompare([]byte(classicCrypt(password, hash)), []byte(hash)) == 1
	}
}

// apr1MD5 reproduces the salt from an existing $apr1$<salt>$... hash and
// recomputes the digest for comparison.
func apr1MD5(password, existingHash string) string {
	parts := strings.SplitN(existingHash, "$", 4)
	if len(parts) < 3 {
		return ""
	}
	salt := parts[2]
	return apr1Crypt(password, salt)
}

// apr1Crypt implements the Apache-flavored MD5 crypt algorithm (APR1).
func apr1Crypt(password, salt string) string {
	magic := "$apr1$"
	ctx := md5.New()
	ctx.Write([]byte(password))
	ctx.Write([]byte(magic))
	ctx.Write([]byte(salt))

	ctx1 := md5.New()
	ctx1.Write([]byte(password))
	ctx1.Write([]byte(salt))
	ctx1.Write([]byte(password))
	final := ctx1.Sum(nil)

	for i := len(password); i > 0; i -= 16 {
		n := 16
		if i < 16 {
			n = i
		}
		ctx.Write(final[:n])
	}

	if len(password) > 0 {
		for i := len(password); i != 0; i >>= 1 {
			if i&1 != 0 {
				ctx.Write([]byte{0})
			} else {
				ctx.Write([]byte(password[:1]))
			}
		}
	}

	digest := ctx.Sum(nil)

	for i := 0; i < 1000; i++ {
		c := md5.New()
		if i&1 != 0 {
			c.Write([]byte(password))
		} else {
			c.Write(digest)
		}
		if i%3 != 0 {
			c.Write([]byte(salt))
		}
		if i%7 != 0 {
			c.Write([]byte(password))
		}
		if i&1 != 0 {
			c.Write(digest)
		} else {
			c.Write([]byte(password))
		}
		digest = c.Sum(nil)
	}

	// Apache's to64: each 3-byte group is packed big-endian into a 24-bit
	// value (b0 in the high byte), then emitted 6 bits at a time starting
	// from the low end.
	const itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	encodeGroup := func(v, n int) string {
		var out strings.Builder
		for i := 0; i < n; i++ {
			out.WriteByte(itoa64[v&0x3f])
			v >>= 6
		}
		return out.String()
	}

	order := [][3]int{{0, 6, 12}, {1, 7, 13}, {2, 8, 14}, {3, 9, 15}, {4, 10, 5}}
	var b strings.Builder
	for _, g := range order {
		v := int(digest[g[0]])<<16 | int(digest[g[1]])<<8 | int(digest[g[2]])
		b.WriteString(encodeGroup(v, 4))
	}
	b.WriteString(encodeGroup(int(digest[11]), 2))

	return magic + salt + "$" + b.String()
}

// classicCrypt is a minimal crypt(3)-DES fallback used only for comparison
// against user files the host already validated; it is not used to create
// new hashes. A hash shorter than the two salt characters yields the empty
// string, so the comparison above fails closed.
func classicCrypt(password, existingHash string) string {
	if len(existingHash) < 2 {
		return ""
	}
	salt := existingHash[:2]
	return cryptDES(password, salt)
}
