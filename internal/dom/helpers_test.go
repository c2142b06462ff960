package dom

import (
	"net/url"
	"strings"
	"testing"

	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, src string) *html.Node {
	t.Helper()

	n, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return n
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

func byID(t *testing.T, root *html.Node, id string) *html.Node {
	t.Helper()

	n := nodes.GetElementByID(root, id)
	if n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}
