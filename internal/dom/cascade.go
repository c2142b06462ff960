package dom

import (
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// maxRuleDepth bounds recursion into nested at-rules.
const maxRuleDepth = 16

// Sheet is a stylesheet source. Base resolves relative url() references found
// in its rules; nil means the document base URL.
type Sheet struct {
	Text string
	Base *url.URL
}

// Computed is the cascaded value of a property on one element.
type Computed struct {
	Value     string
	Base      *url.URL // base for url() references in Value
	Inline    bool     // value comes from the element's style attribute
	Important bool
}

type cascadeRule struct {
	sel   cascadia.Sel
	spec  cascadia.Specificity
	decls []Declaration
	order int
	base  *url.URL
}

// Cascade resolves property values from stylesheet rules and inline styles.
// Only what the export stages need is modelled: selector specificity, source
// order and !important. Inheritance and print-only media are ignored.
type Cascade struct {
	base  *url.URL
	rules []cascadeRule
}

// NewCascade builds a cascade from sheets, in order. Sheets that fail to
// parse contribute nothing.
func NewCascade(base *url.URL, sheets ...Sheet) *Cascade {
	c := &Cascade{base: base}
	order := 0
	for _, s := range sheets {
		sheet, err := parser.Parse(s.Text)
		if err != nil {
			continue
		}
		sheetBase := s.Base
		if sheetBase == nil {
			sheetBase = base
		}
		order = c.addRules(sheet.Rules, sheetBase, order, 0)
	}
	return c
}

// DocumentSheets returns the cascade sources of doc: the text of every
// <style> element in tree order, then the registered sheets.
func DocumentSheets(doc *Document) []Sheet {
	var sheets []Sheet
	for _, n := range nodes.GetElementsByTagName(doc.Node, "style") {
		sheets = append(sheets, Sheet{Text: nodes.TextContent(n)})
	}
	for _, text := range doc.Sheets {
		sheets = append(sheets, Sheet{Text: text})
	}
	return sheets
}

func (c *Cascade) addRules(list []*css.Rule, base *url.URL, order, depth int) int {
	if depth >= maxRuleDepth {
		return order
	}
	for _, rule := range list {
		if rule == nil {
			continue
		}
		switch rule.Kind {
		case css.AtRule:
			switch strings.ToLower(rule.Name) {
			case "@media":
				if isPrintOnly(rule.Prelude) {
					continue
				}
				order = c.addRules(rule.Rules, base, order, depth+1)
			case "@supports", "@layer", "@container":
				order = c.addRules(rule.Rules, base, order, depth+1)
			}
		case css.QualifiedRule:
			decls := convertDeclarations(rule.Declarations)
			if len(decls) == 0 || len(rule.Selectors) == 0 {
				continue
			}
			group, err := cascadia.ParseGroup(strings.Join(rule.Selectors, ","))
			if err != nil {
				continue
			}
			for _, sel := range group {
				if sel == nil || sel.PseudoElement() != "" {
					continue
				}
				c.rules = append(c.rules, cascadeRule{
					sel:   sel,
					spec:  sel.Specificity(),
					decls: decls,
					order: order,
					base:  base,
				})
				order++
			}
		}
	}
	return order
}

func isPrintOnly(prelude string) bool {
	p := strings.ToLower(prelude)
	return strings.Contains(p, "print") && !strings.Contains(p, "screen") && !strings.Contains(p, "all")
}

func convertDeclarations(list []*css.Declaration) []Declaration {
	out := make([]Declaration, 0, len(list))
	for _, d := range list {
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

// candidate is a declaration competing in the cascade for one property.
type candidate struct {
	decl   Declaration
	inline bool
	spec   cascadia.Specificity
	order  int
	base   *url.URL
}

// beats reports whether c wins over prev.
func (c candidate) beats(prev candidate) bool {
	if c.decl.Important != prev.decl.Important {
		return c.decl.Important
	}
	if c.inline != prev.inline {
		return c.inline
	}
	if prev.spec.Less(c.spec) {
		return true
	}
	if c.spec.Less(prev.spec) {
		return false
	}
	return c.order >= prev.order
}

// Computed returns the cascaded value of prop on n. Declarations of any of
// the shorthands also compete; when a shorthand wins, only its url() layers
// are kept (the value is "none" when it has none).
func (c *Cascade) Computed(n *html.Node, prop string, shorthands ...string) (Computed, bool) {
	matches := func(p string) bool {
		if p == prop {
			return true
		}
		for _, s := range shorthands {
			if p == s {
				return true
			}
		}
		return false
	}

	var (
		best  candidate
		found bool
	)
	consider := func(cand candidate) {
		if !found || cand.beats(best) {
			best, found = cand, true
		}
	}

	for _, r := range c.rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, d := range r.decls {
			if matches(d.Property) {
				consider(candidate{decl: d, spec: r.spec, order: r.order, base: r.base})
			}
		}
	}

	for i, d := range ParseDeclarations(nodes.GetAttribute(n, "style")) {
		if matches(d.Property) {
			consider(candidate{decl: d, inline: true, order: len(c.rules) + i, base: c.base})
		}
	}

	if !found {
		return Computed{}, false
	}

	value := best.decl.Value
	if best.decl.Property != prop {
		value = imageLayers(value)
	}
	return Computed{Value: value, Base: best.base, Inline: best.inline, Important: best.decl.Important}, true
}

// imageLayers keeps the image of every layer of a background shorthand,
// gradients included. Layers without an image become none.
func imageLayers(value string) string {
	layers := splitTopLevel(value, ',')
	images := make([]string, len(layers))
	found := false
	for i, layer := range layers {
		img, ok := layerImage(layer)
		if !ok {
			images[i] = "none"
			continue
		}
		images[i] = img
		found = true
	}
	if !found {
		return "none"
	}
	return strings.Join(images, ", ")
}

// layerImage returns the first image function of a shorthand layer.
func layerImage(layer string) (string, bool) {
	for i := 0; i < len(layer); {
		if !isIdentStart(layer[i]) {
			i++
			continue
		}
		start := i
		for i < len(layer) && (isIdentStart(layer[i]) || layer[i] >= '0' && layer[i] <= '9') {
			i++
		}
		if i >= len(layer) || layer[i] != '(' {
			continue
		}
		end := closingParen(layer, i)
		if end < 0 {
			return "", false
		}
		if isImageFunction(strings.ToLower(layer[start:i])) {
			return layer[start : end+1], true
		}
		i = end + 1
	}
	return "", false
}

func isIdentStart(c byte) bool {
	return c == '-' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isImageFunction(name string) bool {
	switch name {
	case "url", "image", "image-set", "-webkit-image-set", "cross-fade", "element", "paint":
		return true
	}
	return strings.HasSuffix(name, "-gradient")
}

// closingParen returns the index of the parenthesis closing the one at open,
// skipping quoted strings, or -1.
func closingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep outside parentheses and quotes.
func splitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		last  int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[last:]))
}
