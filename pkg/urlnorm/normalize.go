// Package urlnorm provides the single URL normalization routine shared by
// every collector and by any downstream fetcher or renderer.
//
// Normalize is pure and deterministic: identical input always yields an
// identical result regardless of caller. Keeping one call site for the
// safe/unsafe decision removes the normalization-mismatch class of bug
// (SSRF/XSS through encoding tricks) by construction.
package urlnorm

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL indicates input that cannot be normalized at all.
// Callers must treat such URLs as unsafe; the error is never fatal to the
// surrounding document.
var ErrInvalidURL = errors.New("invalid url")

// Policy configures which normalized URLs are considered allowed.
type Policy struct {
	// AllowedSchemes is the scheme allowlist. Anything outside it is
	// fail-closed. Matching is case-insensitive (schemes are lowercased
	// before the check).
	AllowedSchemes []string `yaml:"allowed_schemes"`

	// AllowRelative permits schemeless (relative) references.
	AllowRelative bool `yaml:"allow_relative"`
}

// DefaultPolicy returns the default allowlist: http, https, mailto and tel,
// with relative references permitted.
func DefaultPolicy() Policy {
	return Policy{
		AllowedSchemes: []string{"http", "https", "mailto", "tel"},
		AllowRelative:  true,
	}
}

// allows reports whether the (already lowercased) scheme is allowlisted.
func (p Policy) allows(scheme string) bool {
	for _, s := range p.AllowedSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// Result is the canonical answer for one URL.
type Result struct {
	// Scheme is the lowercased scheme, or empty for relative references.
	Scheme string

	// Normalized is the canonical form of the URL.
	Normalized string

	// Allowed reports whether the URL passes the policy.
	Allowed bool
}

// Normalize canonicalizes a raw URL and judges it against the policy.
//
// Steps, in order: strip surrounding whitespace; reject ASCII control
// characters; flag protocol-relative references as not allowed, both
// before and after decoding; percent-decode exactly once (repeat decoding
// would reopen the double-encoding bypass); lowercase the scheme; punycode-normalize the host of
// hierarchical URLs; check the scheme allowlist. A URL with no scheme is
// allowed iff the policy permits relative references.
func Normalize(raw string, policy Policy) (Result, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	if hasControlChars(s) {
		return Result{}, fmt.Errorf("%w: control character in input", ErrInvalidURL)
	}

	// Protocol-relative URLs inherit the embedding document's scheme and
	// bypass scheme allowlists; fail closed.
	if strings.HasPrefix(s, "//") {
		return Result{Normalized: s, Allowed: false}, nil
	}

	decoded := decodeOnce(s)
	if hasControlChars(decoded) {
		return Result{}, fmt.Errorf("%w: control character after percent-decoding", ErrInvalidURL)
	}

	// Re-check after decoding: "%2F%2Fhost" decodes to a protocol-relative
	// reference the raw check above cannot see.
	if strings.HasPrefix(decoded, "//") {
		return Result{Normalized: decoded, Allowed: false}, nil
	}

	scheme, rest, ok := splitScheme(decoded)
	if !ok {
		// Relative reference.
		return Result{
			Normalized: decoded,
			Allowed:    policy.AllowRelative,
		}, nil
	}

	normalized, err := normalizeAfterScheme(scheme, rest)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Scheme:     scheme,
		Normalized: normalized,
		Allowed:    policy.allows(scheme),
	}, nil
}

// IsAllowed is the fail-closed convenience form of Normalize: any error
// counts as not allowed.
func IsAllowed(raw string, policy Policy) bool {
	res, err := Normalize(raw, policy)
	if err != nil {
		return false
	}
	return res.Allowed
}

// normalizeAfterScheme rebuilds the canonical form of scheme + rest.
// Hierarchical URLs (//authority/...) get IDN host normalization.
func normalizeAfterScheme(scheme, rest string) (string, error) {
	if !strings.HasPrefix(rest, "//") {
		// Opaque form (mailto:, tel:, javascript:, ...).
		return scheme + ":" + rest, nil
	}

	authority := rest[2:]
	tail := ""
	if idx := strings.IndexAny(authority, "/?#"); idx >= 0 {
		tail = authority[idx:]
		authority = authority[:idx]
	}

	userinfo := ""
	host := authority
	if idx := strings.LastIndexByte(authority, '@'); idx >= 0 {
		userinfo = authority[:idx+1]
		host = authority[idx+1:]
	}

	port := ""
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 && !strings.Contains(host, "]") {
		port = host[idx:]
		host = host[:idx]
	}

	if host != "" && !strings.HasPrefix(host, "[") {
		ascii, err := idna.Lookup.ToASCII(strings.ToLower(host))
		if err != nil {
			return "", fmt.Errorf("%w: host %q: %v", ErrInvalidURL, host, err)
		}
		host = ascii
	}

	return scheme + "://" + userinfo + host + port + tail, nil
}

// splitScheme extracts a leading URI scheme per RFC 3986: one letter
// followed by letters, digits, '+', '-' or '.', terminated by ':'.
func splitScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlpha(c):
			continue
		case i > 0 && (isDigit(c) || c == '+' || c == '-' || c == '.'):
			continue
		case i > 0 && c == ':':
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}

// decodeOnce performs a single pass of percent-decoding. Malformed escapes
// are left verbatim; they flow on to the scheme/host checks, which fail
// closed on anything unparseable.
func decodeOnce(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// hasControlChars reports whether s contains any ASCII control byte
// (0x00-0x1F or 0x7F).
func hasControlChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7F {
			return true
		}
	}
	return false
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
