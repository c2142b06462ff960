package dom

import (
	"net/url"

	"golang.org/x/net/html"
)

// Document is the owned document model the pipeline reads and mutates.
type Document struct {
	Node    *html.Node // document node (html.DocumentNode) or any ancestor of the render root
	BaseURL *url.URL   // nil means relative references cannot be resolved
	Sheets  []string   // programmatically registered stylesheets
}

// Resolve resolves ref against base, or against the document base URL when
// base is nil. Returns nil if the reference cannot be resolved to an absolute URL.
func (d *Document) Resolve(ref string, base *url.URL) *url.URL {
	if base == nil {
		base = d.BaseURL
	}
	return ResolveURL(base, ref)
}

// ResolveURL resolves ref against base. Absolute references are returned as is.
func ResolveURL(base *url.URL, ref string) *url.URL {
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	if u.IsAbs() {
		return u
	}
	if base == nil {
		return nil
	}
	return base.ResolveReference(u)
}

// Elements calls fn for root and every element below it, in document order.
// Returning false from fn stops the walk.
func Elements(root *html.Node, fn func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if !fn(n) {
				return false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// Contains reports whether n is root or a descendant of root.
func Contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
