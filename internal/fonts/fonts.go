// Package fonts assembles a self-contained @font-face stylesheet for a document.
//
// Capture engines that cannot follow external font URLs need every font the
// document uses embedded in the CSS handed to them. Collect gathers the
// @font-face blocks reachable from the document, keeps one per family and
// inlines their sources as data URIs.
package fonts

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	nodes "github.com/go-shiori/dom"

	"github.com/alnah/go-statcard/internal/dom"
	"github.com/alnah/go-statcard/internal/fetch"
)

// ErrCrossOrigin is reported for linked stylesheets on another origin.
var ErrCrossOrigin = errors.New("cross-origin stylesheet")

var (
	familyPattern     = regexp.MustCompile(`(?i)font-family\s*:\s*([^;}]+)`)
	sizeAdjustPattern = regexp.MustCompile(`(?i)(^|[;{\s])size-adjust\s*:[^;}]*;?`)
)

// fontFaceKeyword starts a block in raw stylesheet text.
const fontFaceKeyword = "@font-face"

// SkipFunc receives sources and font URLs that were left out and why.
type SkipFunc func(rawURL string, err error)

// Collector builds the font embedding CSS of a document.
type Collector struct {
	fetcher fetch.Fetcher
	onSkip  SkipFunc
}

// New creates a Collector. onSkip may be nil.
func New(f fetch.Fetcher, onSkip SkipFunc) *Collector {
	return &Collector{fetcher: f, onSkip: onSkip}
}

// block is a @font-face block and the URL its relative references resolve against.
type block struct {
	text string
	base *url.URL
}

// blockSet keeps blocks in discovery order, deduplicated by exact text.
type blockSet struct {
	blocks []block
	seen   map[string]bool
}

func newBlockSet() *blockSet {
	return &blockSet{seen: make(map[string]bool)}
}

func (s *blockSet) add(text string, base *url.URL) {
	if s.seen[text] {
		return
	}
	s.seen[text] = true
	s.blocks = append(s.blocks, block{text: text, base: base})
}

// Collect returns the processed @font-face blocks of doc joined by newlines.
//
// Sources are scanned in this order: <style> elements, same-origin linked
// stylesheets, then every parseable sheet as a rule list (which also covers
// registered sheets). Only the first block of each font-family survives.
// Unreachable stylesheets and fonts are skipped; only a context error is
// returned.
func (c *Collector) Collect(ctx context.Context, doc *dom.Document) (string, error) {
	set := newBlockSet()
	var sheets []dom.Sheet

	for _, n := range nodes.GetElementsByTagName(doc.Node, "style") {
		text := nodes.TextContent(n)
		for _, b := range ExtractFontFaces(text) {
			set.add(b, nil)
		}
		sheets = append(sheets, dom.Sheet{Text: text})
	}

	linked, err := c.linkedSheets(ctx, doc)
	if err != nil {
		return "", err
	}
	for _, sheet := range linked {
		for _, b := range ExtractFontFaces(sheet.Text) {
			set.add(b, sheet.Base)
		}
	}
	sheets = append(sheets, linked...)

	for _, text := range doc.Sheets {
		sheets = append(sheets, dom.Sheet{Text: text})
	}
	for _, sheet := range sheets {
		for _, rule := range fontFaceRules(sheet.Text) {
			set.add(rule, sheet.Base)
		}
	}

	blocks := firstPerFamily(set.blocks)

	memo := make(map[string]string)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		text, err := c.embed(ctx, doc, b, memo)
		if err != nil {
			return "", err
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n"), nil
}

// linkedSheets fetches every same-origin <link rel="stylesheet">.
func (c *Collector) linkedSheets(ctx context.Context, doc *dom.Document) ([]dom.Sheet, error) {
	var sheets []dom.Sheet
	for _, n := range nodes.GetElementsByTagName(doc.Node, "link") {
		if !isStylesheetLink(nodes.GetAttribute(n, "rel")) {
			continue
		}
		href := strings.TrimSpace(nodes.GetAttribute(n, "href"))
		if href == "" {
			continue
		}

		abs := doc.Resolve(href, nil)
		if abs == nil || !dom.SameOrigin(abs, doc.BaseURL) {
			c.skip(href, ErrCrossOrigin)
			continue
		}

		res, err := c.fetcher.Fetch(ctx, abs.String())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.skip(abs.String(), err)
			continue
		}
		sheets = append(sheets, dom.Sheet{Text: string(res.Body), Base: abs})
	}
	return sheets, nil
}

// embed strips size-adjust from a block and inlines its url() sources.
func (c *Collector) embed(ctx context.Context, doc *dom.Document, b block, memo map[string]string) (string, error) {
	text := StripSizeAdjust(b.text)

	var ctxErr error
	text = dom.ReplaceURLs(text, func(target string) (string, bool) {
		if ctxErr != nil || strings.TrimSpace(target) == "" || dom.IsDataURI(target) {
			return "", false
		}
		abs := doc.Resolve(target, b.base)
		if abs == nil {
			return "", false
		}
		key := abs.String()
		if data, ok := memo[key]; ok {
			return data, data != ""
		}

		res, err := c.fetcher.Fetch(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				ctxErr = ctx.Err()
				return "", false
			}
			memo[key] = ""
			c.skip(key, err)
			return "", false
		}
		data := fetch.DataURI(res)
		memo[key] = data
		return data, true
	})

	if ctxErr != nil {
		return "", ctxErr
	}
	return text, nil
}

func (c *Collector) skip(rawURL string, err error) {
	if c.onSkip != nil {
		c.onSkip(rawURL, err)
	}
}

// ExtractFontFaces returns the @font-face blocks of raw stylesheet text in
// order. Blocks are matched literally from the keyword to the first closing
// brace; nested braces are not supported.
func ExtractFontFaces(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		start := strings.Index(text[i:], fontFaceKeyword)
		if start < 0 {
			break
		}
		start += i
		open := strings.IndexByte(text[start:], '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(text[start+open:], '}')
		if end < 0 {
			break
		}
		end += start + open + 1
		out = append(out, text[start:end])
		i = end
	}
	return out
}

// fontFaceRules parses text and serializes its top-level @font-face rules.
// Text that does not parse yields nothing.
func fontFaceRules(text string) []string {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil
	}
	var out []string
	for _, rule := range sheet.Rules {
		if rule == nil || rule.Kind != css.AtRule {
			continue
		}
		if strings.EqualFold(rule.Name, fontFaceKeyword) {
			out = append(out, rule.String())
		}
	}
	return out
}

// FamilyName returns the font-family declared in a block, unquoted.
// The second result is false when the block declares none.
func FamilyName(text string) (string, bool) {
	m := familyPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.Trim(strings.TrimSpace(m[1]), `"'`)
	name = strings.TrimSpace(name)
	return name, name != ""
}

// firstPerFamily keeps the first block of each font-family, in order.
// Blocks without a font-family are dropped since engines ignore them.
func firstPerFamily(blocks []block) []block {
	seen := make(map[string]bool, len(blocks))
	out := make([]block, 0, len(blocks))
	for _, b := range blocks {
		name, ok := FamilyName(b.text)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, b)
	}
	return out
}

// StripSizeAdjust removes size-adjust declarations from a block.
func StripSizeAdjust(text string) string {
	return sizeAdjustPattern.ReplaceAllString(text, "$1")
}

// isStylesheetLink reports whether a rel attribute lists "stylesheet".
func isStylesheetLink(rel string) bool {
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}
