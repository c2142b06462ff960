package dom

import (
	"net/url"
	"regexp"
	"strings"
)

// cssURLPattern matches url(...) with double-quoted, single-quoted or bare arguments.
var cssURLPattern = regexp.MustCompile(`(?i)url\(\s*(?:"([^"]*)"|'([^']*)'|([^)'"\s]*))\s*\)`)

// URLRef is a url() reference found in a CSS value.
type URLRef struct {
	Start, End int    // byte offsets of the whole url(...) token
	Target     string // unquoted argument
}

// IsData reports whether the reference is already an inlined data URI.
func (r URLRef) IsData() bool {
	return IsDataURI(r.Target)
}

// FindURLs returns every url() reference in value, in order.
func FindURLs(value string) []URLRef {
	matches := cssURLPattern.FindAllStringSubmatchIndex(value, -1)
	refs := make([]URLRef, 0, len(matches))
	for _, m := range matches {
		ref := URLRef{Start: m[0], End: m[1]}
		for g := 1; g <= 3; g++ {
			if m[2*g] >= 0 {
				ref.Target = value[m[2*g]:m[2*g+1]]
				break
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// ReplaceURLs rewrites url() references in value. fn returns the replacement
// target and true, or false to keep the reference as written.
// Replacements are always emitted double-quoted.
func ReplaceURLs(value string, fn func(target string) (string, bool)) string {
	refs := FindURLs(value)
	if len(refs) == 0 {
		return value
	}

	var buf strings.Builder
	last := 0
	for _, ref := range refs {
		buf.WriteString(value[last:ref.Start])
		if repl, ok := fn(ref.Target); ok {
			buf.WriteString(`url("`)
			buf.WriteString(escapeCSSURL(repl))
			buf.WriteString(`")`)
		} else {
			buf.WriteString(value[ref.Start:ref.End])
		}
		last = ref.End
	}
	buf.WriteString(value[last:])
	return buf.String()
}

// escapeCSSURL escapes characters that would terminate a double-quoted CSS string.
func escapeCSSURL(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// SameOrigin reports whether a and b share scheme, host and port.
// Default ports are made explicit before comparing.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	if !strings.EqualFold(a.Scheme, b.Scheme) {
		return false
	}
	if !strings.EqualFold(a.Hostname(), b.Hostname()) {
		return false
	}
	return effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}
