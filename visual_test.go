package statcard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	nodes "github.com/go-shiori/dom"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ---------------------------------------------------------------------------
// Value formatting
// ---------------------------------------------------------------------------

func TestAbbreviateValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  float64
		want   string
		wantOK bool
	}{
		{"below one thousand", 999, "", false},
		{"exact thousand", 1000, "1K", true},
		{"one decimal", 12300, "12.3K", true},
		{"rounds to one decimal", 12345, "12.3K", true},
		{"promotes rounded thousand", 999950, "1M", true},
		{"millions", 1500000, "1.5M", true},
		{"promotes rounded million", 999_999_999, "1B", true},
		{"billions", 2.5e9, "2.5B", true},
		{"negative", -12300, "-12.3K", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := abbreviateValue(tt.value)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("abbreviateValue(%v) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	r := &visualRenderer{printer: message.NewPrinter(language.English)}

	tests := []struct {
		name       string
		value      float64
		abbreviate bool
		want       string
	}{
		{"groups thousands", 1234567, false, "1,234,567"},
		{"small integer", 42, false, "42"},
		{"zero", 0, false, "0"},
		{"fraction", 12.5, false, "12.5"},
		{"two decimals", 3.14159, false, "3.14"},
		{"abbreviated", 12300, true, "12.3K"},
		{"abbreviation skipped below thousand", 999, true, "999"},
		{"beyond int64", 1e19, false, "10,000,000,000,000,000,000"},
		{"negative beyond int64", -1e19, false, "-10,000,000,000,000,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.formatValue(tt.value, tt.abbreviate); got != tt.want {
				t.Errorf("formatValue(%v, %v) = %q, want %q", tt.value, tt.abbreviate, got, tt.want)
			}
		})
	}
}

func TestGoalPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value, goal float64
		want        int
	}{
		{50, 100, 50},
		{1, 3, 33},
		{150, 100, 100},
		{-5, 100, 0},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := goalPercent(tt.value, tt.goal); got != tt.want {
			t.Errorf("goalPercent(%v, %v) = %d, want %d", tt.value, tt.goal, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderVisual - Template rendering
// ---------------------------------------------------------------------------

func followers(n float64) []Metric {
	return []Metric{{Type: MetricFollowers, Value: n}, {Type: MetricLikes, Value: 3400, Prefix: "+"}}
}

func TestRenderVisual(t *testing.T) {
	t.Parallel()

	goal := 1000.0
	e := newTestExporter(t, &mockRasterizer{}, newMockFetcher(nil),
		WithFont("display", Font{Family: "Playfair Display", Stylesheet: "https://fonts.example.test/playfair.css"}),
	)

	tests := []struct {
		name        string
		visual      VisualDocument
		wantSize    Size
		wantClasses []string
		wantStyle   []string
		wantText    []string
		wantSel     []string
	}{
		{
			name:        "free visual uses defaults",
			visual:      VisualDocument{Handle: "@alice", Period: "March 2026", Metrics: followers(1234)},
			wantSize:    Size{Width: 1080, Height: 1080},
			wantClasses: []string{"visual", "template-classic", "bg-midnight"},
			wantText:    []string{"@alice", "March 2026", "1,234", "Followers", "+3,400", "Likes"},
		},
		{
			name: "premium layout",
			visual: VisualDocument{
				Handle:  "alice",
				Metrics: followers(12300),
				Premium: &Premium{
					AspectRatio:  AspectLandscape,
					Template:     TemplateBold,
					LogoPosition: LogoTopRight,
					Abbreviate:   true,
				},
			},
			wantSize:    Size{Width: 1200, Height: 675},
			wantClasses: []string{"template-bold", "logo-top-right"},
			wantText:    []string{"12.3K", "+3.4K", brandName},
			wantSel:     []string{".logo"},
		},
		{
			name: "color overrides",
			visual: VisualDocument{
				Handle:     "alice",
				Metrics:    followers(1),
				Background: Background{Preset: "sunset", Color: "#112233"},
				TextColor:  "#fff",
			},
			wantSize:    Size{Width: 1080, Height: 1080},
			wantClasses: []string{"bg-sunset"},
			wantStyle:   []string{"background-color: #112233", "background-image: none", "color: #fff"},
		},
		{
			name: "background image",
			visual: VisualDocument{
				Handle:     "alice",
				Metrics:    followers(1),
				Background: Background{Image: "/uploads/me.jpg"},
			},
			wantSize:  Size{Width: 1080, Height: 1080},
			wantStyle: []string{`background-image: url("/uploads/me.jpg")`},
		},
		{
			name: "registered font",
			visual: VisualDocument{
				Handle:  "alice",
				Metrics: followers(1),
				Premium: &Premium{Font: "display", AspectRatio: AspectStory, Template: TemplateMinimal},
			},
			wantSize:    Size{Width: 1080, Height: 1920},
			wantClasses: []string{"template-minimal"},
			wantStyle:   []string{`font-family: "Playfair Display", sans-serif`},
			wantSel:     []string{`link[href="https://fonts.example.test/playfair.css"]`},
		},
		{
			name:     "whole value beyond int64",
			visual:   VisualDocument{Handle: "@alice", Metrics: []Metric{{Type: "views", Value: 1e19}}},
			wantSize: Size{Width: 1080, Height: 1080},
			wantText: []string{"@alice", "10,000,000,000,000,000,000"},
		},
		{
			name: "goal progress",
			visual: VisualDocument{
				Handle:  "alice",
				Metrics: followers(250),
				Premium: &Premium{Goal: &goal},
			},
			wantSize: Size{Width: 1080, Height: 1080},
			wantText: []string{"25% of 1,000 followers"},
			wantSel:  []string{`.goal-bar[style="width: 25%"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rv, err := e.RenderVisual(tt.visual)
			if err != nil {
				t.Fatalf("RenderVisual() unexpected error: %v", err)
			}
			if rv.Size != tt.wantSize {
				t.Errorf("Size = %+v, want %+v", rv.Size, tt.wantSize)
			}
			if !rv.Document.Contains(rv.Root) {
				t.Fatal("root is not part of the document")
			}

			classes := strings.Fields(nodes.GetAttribute(rv.Root, "class"))
			for _, want := range tt.wantClasses {
				if !slices.Contains(classes, want) {
					t.Errorf("classes %v missing %q", classes, want)
				}
			}
			style := nodes.GetAttribute(rv.Root, "style")
			for _, want := range tt.wantStyle {
				if !strings.Contains(style, want) {
					t.Errorf("root style %q missing %q", style, want)
				}
			}
			text := strings.Join(strings.Fields(nodes.TextContent(rv.Root)), " ")
			for _, want := range tt.wantText {
				if !strings.Contains(text, want) {
					t.Errorf("text %q missing %q", text, want)
				}
			}
			for _, sel := range tt.wantSel {
				if rv.Document.Find(sel) == nil {
					t.Errorf("no element matches %s", sel)
				}
			}
		})
	}
}

func TestRenderVisual_Errors(t *testing.T) {
	t.Parallel()

	e := newTestExporter(t, &mockRasterizer{}, newMockFetcher(nil))

	tests := []struct {
		name    string
		visual  VisualDocument
		wantErr error
	}{
		{
			name:    "empty handle",
			visual:  VisualDocument{Metrics: followers(1)},
			wantErr: ErrEmptyHandle,
		},
		{
			name:    "unregistered font",
			visual:  VisualDocument{Handle: "alice", Metrics: followers(1), Premium: &Premium{Font: "comic"}},
			wantErr: ErrInvalidFont,
		},
		{
			name:    "unknown template",
			visual:  VisualDocument{Handle: "alice", Metrics: followers(1), Premium: &Premium{Template: "neon"}},
			wantErr: ErrInvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := e.RenderVisual(tt.visual); !errors.Is(err, tt.wantErr) {
				t.Errorf("RenderVisual() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewExporter_CustomTemplates(t *testing.T) {
	t.Parallel()

	writeTemplate := func(t *testing.T, dir, layout string) {
		t.Helper()
		tmplDir := filepath.Join(dir, "templates", "classic")
		if err := os.MkdirAll(tmplDir, 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(filepath.Join(tmplDir, "layout.html"), []byte(layout), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(filepath.Join(tmplDir, "style.css"), []byte(".template-classic { color: teal; }"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	t.Run("override is used", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplate(t, dir, `<div id="visual" class="{{.Classes}}"><b>{{.Handle}} custom</b></div>`)

		e := newTestExporter(t, &mockRasterizer{}, newMockFetcher(nil), WithAssetPath(dir))
		rv, err := e.RenderVisual(VisualDocument{Handle: "alice", Metrics: followers(1)})
		if err != nil {
			t.Fatalf("RenderVisual() unexpected error: %v", err)
		}
		if got := nodes.TextContent(rv.Root); !strings.Contains(got, "alice custom") {
			t.Errorf("root text = %q, want custom layout", got)
		}
	})

	t.Run("layout without root element", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplate(t, dir, `<div class="{{.Classes}}">{{.Handle}}</div>`)

		e := newTestExporter(t, &mockRasterizer{}, newMockFetcher(nil), WithAssetPath(dir))
		_, err := e.RenderVisual(VisualDocument{Handle: "alice", Metrics: followers(1)})
		if !errors.Is(err, ErrTemplateRender) {
			t.Errorf("RenderVisual() error = %v, want ErrTemplateRender", err)
		}
	})

	t.Run("layout that does not parse", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplate(t, dir, `<div id="visual">{{.Handle</div>`)

		_, err := NewExporter(WithRasterizer(&mockRasterizer{}), WithAssetPath(dir))
		if !errors.Is(err, ErrTemplateRender) {
			t.Errorf("NewExporter() error = %v, want ErrTemplateRender", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestExport - Visual documents end to end
// ---------------------------------------------------------------------------

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("free visual is watermarked and uploaded", func(t *testing.T) {
		t.Parallel()

		r := &mockRasterizer{}
		store := &mockStore{}
		e := newTestExporter(t, r, newMockFetcher(nil), WithStore(store), WithFontEmbedding(FontEmbeddingNever))

		res, err := e.Export(context.Background(), VisualDocument{Handle: "alice", Metrics: followers(10)})
		if err != nil {
			t.Fatalf("Export() unexpected error: %v", err)
		}
		if res.Width != 1080 || res.Height != 1080 {
			t.Errorf("size = %dx%d, want 1080x1080", res.Width, res.Height)
		}
		if !strings.HasPrefix(res.URL, "https://cdn.example.test/") {
			t.Errorf("URL = %q, want stored URL", res.URL)
		}
		if html := r.calls()[0].HTML; !strings.Contains(html, watermarkAttr) {
			t.Error("free visual must carry the watermark")
		}
	})

	t.Run("premium visual is not watermarked", func(t *testing.T) {
		t.Parallel()

		r := &mockRasterizer{}
		e := newTestExporter(t, r, newMockFetcher(nil), WithFontEmbedding(FontEmbeddingNever))

		res, err := e.Export(context.Background(), VisualDocument{
			Handle:  "alice",
			Metrics: followers(10),
			Premium: &Premium{AspectRatio: AspectLandscape},
		})
		if err != nil {
			t.Fatalf("Export() unexpected error: %v", err)
		}
		req := r.calls()[0]
		if strings.Contains(req.HTML, watermarkAttr) {
			t.Error("premium visual must not carry the watermark")
		}
		if req.Width != 1200 || req.Height != 675 {
			t.Errorf("request size = %dx%d, want 1200x675", req.Width, req.Height)
		}
		if !strings.Contains(req.HTML, "width:600px;height:338px") {
			t.Error("capture page must be sized to the rounded-up layout viewport")
		}
		if res.URL != "" {
			t.Errorf("URL = %q, want empty without store", res.URL)
		}
	})

	t.Run("preset background is inlined", func(t *testing.T) {
		t.Parallel()

		r := &mockRasterizer{}
		f := newMockFetcher(map[string]*Resource{
			"https://cdn.example.test/backgrounds/paper.jpg": {ContentType: "image/jpeg", Body: testJPEG},
		})
		e := newTestExporter(t, r, f,
			WithBaseURL("https://cdn.example.test/"),
			WithFontEmbedding(FontEmbeddingNever),
			WithWatermark(""),
		)

		_, err := e.Export(context.Background(), VisualDocument{
			Handle:     "alice",
			Metrics:    followers(10),
			Background: Background{Preset: "paper"},
		})
		if err != nil {
			t.Fatalf("Export() unexpected error: %v", err)
		}
		req := r.calls()[0]
		if !strings.Contains(req.HTML, "data:image/jpeg;base64,") {
			t.Error("preset background must be inlined")
		}
		if strings.Contains(req.HTML, watermarkAttr) {
			t.Error("empty watermark text must disable the watermark")
		}
	})

	t.Run("invalid visual", func(t *testing.T) {
		t.Parallel()

		r := &mockRasterizer{}
		e := newTestExporter(t, r, newMockFetcher(nil))

		_, err := e.Export(context.Background(), VisualDocument{Handle: "alice"})
		if !errors.Is(err, ErrNoMetrics) {
			t.Errorf("Export() error = %v, want ErrNoMetrics", err)
		}
		if len(r.calls()) != 0 {
			t.Error("rasterizer must not run for an invalid visual")
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		t.Parallel()

		r := &mockRasterizer{fn: func(ctx context.Context, call int, req RasterRequest) ([]byte, error) {
			panic("boom")
		}}
		e := newTestExporter(t, r, newMockFetcher(nil), WithFontEmbedding(FontEmbeddingNever))

		_, err := e.Export(context.Background(), VisualDocument{Handle: "alice", Metrics: followers(10)})
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("Export() error = %v, want internal error", err)
		}
	})
}
