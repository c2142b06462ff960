package statcard

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestParseDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{name: "no base", base: ""},
		{name: "absolute base", base: "https://example.test/app/"},
		{name: "relative base", base: "/app/", wantErr: true},
		{name: "unparseable base", base: "https://exa mple.test/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := ParseDocument(`<div id="a">hi</div>`, tt.base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.base == "" && doc.BaseURL != nil {
				t.Errorf("BaseURL = %v, want nil", doc.BaseURL)
			}
			if tt.base != "" && doc.BaseURL.String() != tt.base {
				t.Errorf("BaseURL = %v, want %s", doc.BaseURL, tt.base)
			}
			if doc.Find("#a") == nil {
				t.Error("Find(#a) = nil")
			}
		})
	}
}

func TestDocument_Contains(t *testing.T) {
	t.Parallel()

	doc, _ := parseCard(t)
	other, _ := parseCard(t)

	if !doc.Contains(doc.Find("#card")) {
		t.Error("Contains(own node) = false")
	}
	if !doc.Contains(doc.Node) {
		t.Error("Contains(document node) = false")
	}
	if doc.Contains(other.Find("#card")) {
		t.Error("Contains(foreign node) = true")
	}
	if doc.Contains(nil) {
		t.Error("Contains(nil) = true")
	}
	if doc.Contains(&html.Node{Type: html.ElementNode, Data: "div"}) {
		t.Error("Contains(detached node) = true")
	}
}

func TestDocument_AddSheet(t *testing.T) {
	t.Parallel()

	r := &mockRasterizer{}
	e := newTestExporter(t, r, newMockFetcher(nil), WithFontEmbedding(FontEmbeddingNever))

	doc, err := ParseDocument(`<div id="card">x</div>`, "")
	if err != nil {
		t.Fatalf("ParseDocument() unexpected error: %v", err)
	}
	doc.AddSheet("#card { color: rebeccapurple; }</style><script>")

	if _, err := e.Rasterize(t.Context(), doc, doc.Find("#card"), RasterOptions{Width: 10, Height: 10}); err != nil {
		t.Fatalf("Rasterize() unexpected error: %v", err)
	}
	page := r.calls()[0].HTML
	if !strings.Contains(page, "rebeccapurple") {
		t.Error("registered sheet missing from capture page")
	}
	if strings.Contains(page, "</style><script>") {
		t.Error("registered sheet must not close its style element")
	}
}

func TestDocument_AcquireRelease(t *testing.T) {
	t.Parallel()

	doc, _ := parseCard(t)

	if !doc.acquire() {
		t.Fatal("first acquire failed")
	}
	if doc.acquire() {
		t.Error("second acquire must fail while held")
	}
	doc.release()
	if !doc.acquire() {
		t.Error("acquire after release failed")
	}
}
