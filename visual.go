package statcard

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alnah/go-statcard/internal/assets"
)

// Font is a web font premium visuals may select.
type Font struct {
	Family     string // CSS font-family value, e.g. "Playfair Display"
	Stylesheet string // URL of a stylesheet declaring its @font-face rules
}

// RenderedVisual is a visual document rendered to HTML, ready for export.
type RenderedVisual struct {
	Document *Document
	Root     *html.Node // the #visual element
	Size     Size       // output size of the aspect ratio preset
}

// visualRootID is the id every layout template gives its root element.
const visualRootID = "visual"

// brandName is the text of the logo badge.
const brandName = "statcard"

// pageShell wraps a layout template into a complete document.
const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if .FontStylesheet}}<link rel="stylesheet" href="{{.FontStylesheet}}">
{{end}}<style>{{.CSS}}</style>
</head>
<body>
{{template "layout" .}}
</body>
</html>`

// visualData is the data passed to layout templates.
type visualData struct {
	Handle         string
	Period         string
	Metrics        []metricView
	Goal           *goalView
	Logo           string
	Brand          string
	Classes        string
	RootStyle      template.CSS
	FontStylesheet string
	CSS            template.CSS
}

type metricView struct {
	Type   string
	Label  string
	Value  string
	Prefix string
}

type goalView struct {
	Label   string
	Target  string
	Percent int
}

// visualRenderer turns VisualDocuments into Documents.
type visualRenderer struct {
	loader    assets.AssetLoader
	baseURL   *url.URL
	fonts     map[string]Font
	sharedCSS string
	templates map[string]*visualTemplate
	printer   *message.Printer
}

type visualTemplate struct {
	tmpl *template.Template
	css  string
}

// newVisualRenderer loads the shared stylesheets and parses the built-in
// templates. Templates are read through loader so a custom asset path can
// override any of them.
func newVisualRenderer(loader assets.AssetLoader, baseURL string, fonts map[string]Font) (*visualRenderer, error) {
	r := &visualRenderer{
		loader:    loader,
		fonts:     fonts,
		templates: make(map[string]*visualTemplate),
		printer:   message.NewPrinter(language.English),
	}

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("base URL %q must be an absolute URL", baseURL)
		}
		r.baseURL = u
	}

	var shared []string
	for _, name := range []string{assets.BaseStyleName, assets.BackgroundsStyleName} {
		css, err := loader.LoadStyle(name)
		if err != nil {
			return nil, fmt.Errorf("loading style %q: %w", name, err)
		}
		shared = append(shared, css)
	}
	r.sharedCSS = strings.Join(shared, "\n")

	for _, name := range []string{TemplateClassic, TemplateMinimal, TemplateBold} {
		if _, err := r.template(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// template returns the parsed template set of the given name.
func (r *visualRenderer) template(name string) (*visualTemplate, error) {
	if vt, ok := r.templates[name]; ok {
		return vt, nil
	}

	ts, err := r.loader.LoadTemplateSet(name)
	if err != nil {
		return nil, fmt.Errorf("loading template set %q: %w", name, err)
	}

	tmpl, err := template.New("page").Parse(pageShell)
	if err == nil {
		_, err = tmpl.New("layout").Parse(ts.Layout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrTemplateRender, name, err)
	}

	vt := &visualTemplate{tmpl: tmpl, css: ts.Style}
	r.templates[name] = vt
	return vt, nil
}

// Render builds the Document of a validated visual document.
func (r *visualRenderer) Render(v VisualDocument) (*RenderedVisual, error) {
	p := v.Premium
	if p == nil {
		p = &Premium{}
	}

	size, err := AspectSize(p.AspectRatio)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(p.Template)
	if name == "" {
		name = TemplateClassic
	}
	vt, err := r.template(name)
	if err != nil {
		return nil, err
	}

	data := visualData{
		Handle:  strings.TrimPrefix(strings.TrimSpace(v.Handle), "@"),
		Period:  v.Period,
		Brand:   brandName,
		Classes: r.classes(name, v.Background.Preset, p.LogoPosition),
		CSS:     template.CSS(r.sharedCSS + "\n" + vt.css), // #nosec G203 -- stylesheets come from the asset loader
	}

	var family string
	if p.Font != "" {
		font, ok := r.fonts[p.Font]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidFont, p.Font)
		}
		family = font.Family
		data.FontStylesheet = font.Stylesheet
	}
	data.RootStyle = rootStyle(v, family)

	if logo := strings.ToLower(p.LogoPosition); logo != "" && logo != LogoNone {
		data.Logo = logo
	}

	for _, m := range v.Metrics {
		data.Metrics = append(data.Metrics, metricView{
			Type:   strings.ToLower(m.Type),
			Label:  m.Label(),
			Value:  r.formatValue(m.Value, p.Abbreviate),
			Prefix: m.Prefix,
		})
	}

	if p.Goal != nil {
		first := v.Metrics[0]
		data.Goal = &goalView{
			Label:   strings.ToLower(first.Label()),
			Target:  r.formatValue(*p.Goal, p.Abbreviate),
			Percent: goalPercent(first.Value, *p.Goal),
		}
	}

	var buf strings.Builder
	if err := vt.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	var base string
	if r.baseURL != nil {
		base = r.baseURL.String()
	}
	doc, err := ParseDocument(buf.String(), base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	root := doc.Find("#" + visualRootID)
	if root == nil {
		return nil, fmt.Errorf("%w: template %q has no #%s element", ErrTemplateRender, name, visualRootID)
	}

	return &RenderedVisual{Document: doc, Root: root, Size: size}, nil
}

// classes returns the class list of the visual root.
func (r *visualRenderer) classes(tmpl, preset, logo string) string {
	if preset == "" {
		preset = "midnight"
	}
	classes := []string{"visual", "template-" + tmpl, "bg-" + preset}
	if logo = strings.ToLower(logo); logo != "" && logo != LogoNone {
		classes = append(classes, "logo-"+logo)
	}
	return strings.Join(classes, " ")
}

// rootStyle returns the inline overrides of the visual root. Inputs are
// validated, so none of them can escape the declaration they sit in.
func rootStyle(v VisualDocument, family string) template.CSS {
	var decls []string
	if v.Background.Color != "" {
		decls = append(decls, "background-color: "+v.Background.Color)
		if v.Background.Image == "" {
			decls = append(decls, "background-image: none")
		}
	}
	if v.Background.Image != "" {
		decls = append(decls, `background-image: url("`+v.Background.Image+`")`)
	}
	if v.TextColor != "" {
		decls = append(decls, "color: "+v.TextColor)
	}
	if family != "" {
		decls = append(decls, `font-family: "`+strings.ReplaceAll(family, `"`, "")+`", sans-serif`)
	}
	return template.CSS(strings.Join(decls, "; ")) // #nosec G203 -- values validated by VisualDocument.Validate
}

// formatValue renders a metric value, grouped by thousands or abbreviated.
func (r *visualRenderer) formatValue(v float64, abbreviate bool) string {
	if abbreviate {
		if s, ok := abbreviateValue(v); ok {
			return s
		}
	}
	if v == math.Trunc(v) {
		// int64 cannot hold whole values from 2^63 up.
		if math.Abs(v) >= 1<<63 {
			return r.printer.Sprintf("%.0f", v)
		}
		return r.printer.Sprintf("%d", int64(v))
	}
	return strings.TrimRight(strings.TrimRight(r.printer.Sprintf("%.2f", v), "0"), ".")
}

// abbreviateValue renders 12300 as 12.3K. Values below one thousand are not
// abbreviated.
func abbreviateValue(v float64) (string, bool) {
	units := []struct {
		size   float64
		suffix string
	}{
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	abs := math.Abs(v)
	for i, u := range units {
		if abs < u.size {
			continue
		}
		scaled := math.Round(v/u.size*10) / 10
		// 999950 rounds to 1000.0K; promote it to the next unit.
		if math.Abs(scaled) >= 1000 && i > 0 {
			scaled = math.Round(v/units[i-1].size*10) / 10
			u = units[i-1]
		}
		s := fmt.Sprintf("%.1f", scaled)
		s = strings.TrimSuffix(s, ".0")
		return s + u.suffix, true
	}
	return "", false
}

// goalPercent returns progress toward goal, clamped to 0..100.
func goalPercent(value, goal float64) int {
	if goal <= 0 {
		return 0
	}
	pct := int(math.Floor(value / goal * 100))
	return max(0, min(100, pct))
}
