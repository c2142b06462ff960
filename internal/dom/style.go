package dom

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Declaration is a single CSS property declaration.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// String renders the declaration without a trailing semicolon.
func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// ParseDeclarations parses a declaration list such as a style attribute.
// Property names are lower-cased; empty declarations are dropped.
func ParseDeclarations(text string) []Declaration {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// douceur only closes a declaration on ';' or '}'.
	terminated := text
	if !strings.HasSuffix(terminated, ";") {
		terminated += ";"
	}

	if parsed, err := parser.ParseDeclarations(terminated); err == nil {
		out := make([]Declaration, 0, len(parsed))
		for _, d := range parsed {
			if d == nil {
				continue
			}
			prop := strings.ToLower(strings.TrimSpace(d.Property))
			val := strings.TrimSpace(d.Value)
			if prop == "" || val == "" {
				continue
			}
			out = append(out, Declaration{Property: prop, Value: val, Important: d.Important})
		}
		return out
	}

	// Tokenizer rejected the input; fall back to a plain split.
	var out []Declaration
	for _, part := range strings.Split(text, ";") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		important := false
		if strings.HasSuffix(strings.ToLower(val), "!important") {
			important = true
			val = strings.TrimSpace(val[:len(val)-len("!important")])
		}
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Declaration{Property: prop, Value: val, Important: important})
	}
	return out
}

// FormatDeclarations renders declarations as a style attribute value.
func FormatDeclarations(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// InlineProperty returns the effective value of prop in n's style attribute.
// An important declaration beats later normal ones; otherwise the last wins.
func InlineProperty(n *html.Node, prop string) (Declaration, bool) {
	var (
		found Declaration
		ok    bool
	)
	for _, d := range ParseDeclarations(nodes.GetAttribute(n, "style")) {
		if d.Property != prop {
			continue
		}
		if ok && found.Important && !d.Important {
			continue
		}
		found, ok = d, true
	}
	return found, ok
}

// SetInlineProperty replaces every declaration of prop in n's style attribute
// with a single declaration holding value.
func SetInlineProperty(n *html.Node, prop, value string, important bool) {
	decls := ParseDeclarations(nodes.GetAttribute(n, "style"))
	kept := decls[:0]
	for _, d := range decls {
		if d.Property != prop {
			kept = append(kept, d)
		}
	}
	kept = append(kept, Declaration{Property: prop, Value: value, Important: important})
	nodes.SetAttribute(n, "style", FormatDeclarations(kept))
}

// AttrSnapshot records whether an attribute existed and its value.
type AttrSnapshot struct {
	node    *html.Node
	key     string
	value   string
	present bool
}

// SnapshotAttr captures the current state of attribute key on n.
func SnapshotAttr(n *html.Node, key string) AttrSnapshot {
	return AttrSnapshot{
		node:    n,
		key:     key,
		value:   nodes.GetAttribute(n, key),
		present: nodes.HasAttribute(n, key),
	}
}

// Restore puts the attribute back exactly as captured, removing it if it was absent.
func (s AttrSnapshot) Restore() {
	if s.node == nil {
		return
	}
	if !s.present {
		nodes.RemoveAttribute(s.node, s.key)
		return
	}
	nodes.SetAttribute(s.node, s.key, s.value)
}
