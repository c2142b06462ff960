package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-statcard/internal/dom"
)

// ErrNilRoot is returned when no render root is given.
var ErrNilRoot = errors.New("render root is nil")

// NodeFilter reports whether a node is kept in the capture page.
// Rejecting a node drops its whole subtree.
type NodeFilter func(*html.Node) bool

// DefaultNodeFilter drops script and noscript elements.
func DefaultNodeFilter(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return true
	}
	switch n.DataAtom {
	case atom.Script, atom.Noscript:
		return false
	}
	return true
}

// CaptureOptions sizes and decorates the capture page.
type CaptureOptions struct {
	Width   int        // layout viewport width in CSS pixels
	Height  int        // layout viewport height in CSS pixels
	FontCSS string     // font embedding stylesheet, may be empty
	Filter  NodeFilter // nil means DefaultNodeFilter
}

// BuildCapturePage renders a standalone HTML page holding a filtered copy
// of root and the stylesheets of doc it needs to render the same way.
// The document itself is not modified.
func BuildCapturePage(ctx context.Context, doc *dom.Document, root *html.Node, opts CaptureOptions) (string, error) {
	if root == nil {
		return "", ErrNilRoot
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filter := opts.Filter
	if filter == nil {
		filter = DefaultNodeFilter
	}

	page := &html.Node{Type: html.DocumentNode}
	page.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	htmlEl := element(atom.Html)
	head := element(atom.Head)
	body := element(atom.Body)
	page.AppendChild(htmlEl)
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)

	meta := element(atom.Meta)
	nodes.SetAttribute(meta, "charset", "utf-8")
	head.AppendChild(meta)

	if doc.BaseURL != nil {
		base := element(atom.Base)
		nodes.SetAttribute(base, "href", doc.BaseURL.String())
		head.AppendChild(base)
	}

	for _, n := range headStyles(doc.Node, root) {
		if c := cloneFiltered(n, filter); c != nil {
			head.AppendChild(c)
		}
	}
	for _, text := range doc.Sheets {
		style := element(atom.Style)
		style.AppendChild(&html.Node{Type: html.TextNode, Data: sanitizeCSS(text)})
		head.AppendChild(style)
	}

	if c := cloneFiltered(root, filter); c != nil {
		body.AppendChild(c)
	}

	var buf strings.Builder
	if err := html.Render(&buf, page); err != nil {
		return "", fmt.Errorf("rendering capture page: %w", err)
	}

	var injector CSSInjector = &CSSInjection{}
	out := injector.InjectCSS(ctx, buf.String(), opts.FontCSS)
	out = injector.InjectCSS(ctx, out, SizingCSS(opts.Width, opts.Height))
	return out, nil
}

// SizingCSS pins the page to the layout viewport so nothing scrolls.
func SizingCSS(width, height int) string {
	if width <= 0 || height <= 0 {
		return "html,body{margin:0;padding:0}"
	}
	return fmt.Sprintf("html,body{margin:0;padding:0;width:%dpx;height:%dpx;overflow:hidden}", width, height)
}

// headStyles returns the <style> and stylesheet <link> elements of the
// document that live outside root, in tree order. Those inside root travel
// with the copy of root.
func headStyles(docNode, root *html.Node) []*html.Node {
	var out []*html.Node
	dom.Elements(docNode, func(n *html.Node) bool {
		if dom.Contains(root, n) {
			return true
		}
		switch n.DataAtom {
		case atom.Style:
			out = append(out, n)
		case atom.Link:
			if isStylesheet(nodes.GetAttribute(n, "rel")) {
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

func isStylesheet(rel string) bool {
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}

// cloneFiltered deep-copies n, dropping subtrees the filter rejects.
// Returns nil when n itself is rejected.
func cloneFiltered(n *html.Node, keep NodeFilter) *html.Node {
	if !keep(n) {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if cc := cloneFiltered(child, keep); cc != nil {
			c.AppendChild(cc)
		}
	}
	return c
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
