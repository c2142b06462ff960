package statcard

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/alnah/go-statcard/internal/dom"
)

// Document is the owned document an export reads and temporarily mutates.
//
// Node is the root of an HTML tree (usually the document node). BaseURL
// resolves relative references; nil means relative references are skipped.
// Sheets holds stylesheets registered programmatically rather than through
// a <style> or <link> element.
//
// Only one export may run against a Document at a time; a concurrent export
// fails with ErrExportInFlight.
type Document struct {
	Node    *html.Node
	BaseURL *url.URL
	Sheets  []string

	busy atomic.Bool
}

// NewDocument wraps an existing tree.
func NewDocument(node *html.Node, baseURL *url.URL) *Document {
	return &Document{Node: node, BaseURL: baseURL}
}

// ParseDocument parses HTML source into a Document.
// An empty baseURL leaves the document without a base.
func ParseDocument(src, baseURL string) (*Document, error) {
	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
		}
		if !u.IsAbs() {
			return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
		}
		base = u
	}

	node, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{Node: node, BaseURL: base}, nil
}

// AddSheet registers a stylesheet that has no element in the tree.
func (d *Document) AddSheet(css string) {
	d.Sheets = append(d.Sheets, css)
}

// Find returns the first element matching a CSS selector, or nil.
func (d *Document) Find(selector string) *html.Node {
	return nodes.QuerySelector(d.Node, selector)
}

// HTML renders the current state of the tree.
func (d *Document) HTML() (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, d.Node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Contains reports whether n belongs to the document tree.
func (d *Document) Contains(n *html.Node) bool {
	return n != nil && dom.Contains(d.Node, n)
}

// acquire claims the document for one export. It returns false when another
// export holds it.
func (d *Document) acquire() bool {
	return d.busy.CompareAndSwap(false, true)
}

func (d *Document) release() {
	d.busy.Store(false)
}

// view exposes the document to the internal stages.
func (d *Document) view() *dom.Document {
	return &dom.Document{Node: d.Node, BaseURL: d.BaseURL, Sheets: d.Sheets}
}
