package statcard

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-statcard/internal/fetch"
)

// Aspect ratio presets.
const (
	AspectSquare    = "square"
	AspectPortrait  = "portrait"
	AspectLandscape = "landscape"
	AspectStory     = "story"
)

// Size is an output size in pixels.
type Size struct {
	Width  int
	Height int
}

// aspectSizes maps each preset to its output size.
var aspectSizes = map[string]Size{
	AspectSquare:    {Width: 1080, Height: 1080},
	AspectPortrait:  {Width: 1080, Height: 1350},
	AspectLandscape: {Width: 1200, Height: 675},
	AspectStory:     {Width: 1080, Height: 1920},
}

// AspectSize returns the output size of an aspect ratio preset.
// An empty ratio means AspectSquare.
func AspectSize(ratio string) (Size, error) {
	if ratio == "" {
		ratio = AspectSquare
	}
	size, ok := aspectSizes[strings.ToLower(ratio)]
	if !ok {
		return Size{}, fmt.Errorf("%w: %q (must be square, portrait, landscape, or story)", ErrInvalidAspectRatio, ratio)
	}
	return size, nil
}

// Encoding constants.
const (
	DefaultQuality    = 95
	DefaultPixelRatio = 2.0
)

// Template variants.
const (
	TemplateClassic = "classic"
	TemplateMinimal = "minimal"
	TemplateBold    = "bold"
)

// Logo positions.
const (
	LogoTopLeft     = "top-left"
	LogoTopRight    = "top-right"
	LogoBottomLeft  = "bottom-left"
	LogoBottomRight = "bottom-right"
	LogoNone        = "none"
)

// Metric types.
const (
	MetricFollowers   = "followers"
	MetricFollowing   = "following"
	MetricPosts       = "posts"
	MetricImpressions = "impressions"
	MetricLikes       = "likes"
	MetricReposts     = "reposts"
	MetricReplies     = "replies"
	MetricViews       = "views"
	MetricEngagement  = "engagement"
	MetricSubscribers = "subscribers"
)

// metricLabels holds the display label of each metric type.
var metricLabels = map[string]string{
	MetricFollowers:   "Followers",
	MetricFollowing:   "Following",
	MetricPosts:       "Posts",
	MetricImpressions: "Impressions",
	MetricLikes:       "Likes",
	MetricReposts:     "Reposts",
	MetricReplies:     "Replies",
	MetricViews:       "Views",
	MetricEngagement:  "Engagement",
	MetricSubscribers: "Subscribers",
}

// colorPattern accepts #rgb and #rrggbb hex colors.
var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// VisualDocument describes one visual to export.
type VisualDocument struct {
	Handle     string     // account handle, required
	Period     string     // optional period label, e.g. "March 2026"
	Metrics    []Metric   // ordered, at least one
	Background Background // preset and overrides
	TextColor  string     // hex color, empty means the template default
	Premium    *Premium   // nil for free visuals, which get a watermark
}

// Metric is one figure shown on the visual.
type Metric struct {
	Type   string  // one of the Metric* constants
	Value  float64 // must be finite
	Prefix string  // optional display prefix, e.g. "+"
}

// Background selects the visual background.
type Background struct {
	Preset string // preset id from the backgrounds stylesheet, empty means default
	Color  string // optional solid color override, hex
	Image  string // optional image URL, resolved against the document base
}

// Premium holds the attributes only paid visuals may set.
type Premium struct {
	Font         string   // registered font name, empty means the template font
	AspectRatio  string   // one of the Aspect* constants, empty means square
	Template     string   // one of the Template* constants, empty means classic
	LogoPosition string   // one of the Logo* constants, empty means none
	Goal         *float64 // optional target for the first metric
	Abbreviate   bool     // render 12300 as 12.3K
}

// Validate checks the visual document.
// Font names are only checked for shape; the exporter resolves them.
func (v VisualDocument) Validate() error {
	if strings.TrimSpace(v.Handle) == "" {
		return ErrEmptyHandle
	}
	if len(v.Metrics) == 0 {
		return ErrNoMetrics
	}
	for i, m := range v.Metrics {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("metric %d: %w", i, err)
		}
	}
	if err := v.Background.Validate(); err != nil {
		return err
	}
	if v.TextColor != "" && !colorPattern.MatchString(v.TextColor) {
		return fmt.Errorf("%w: text color %q", ErrInvalidColor, v.TextColor)
	}
	return v.Premium.Validate()
}

// Validate checks the metric type and value.
func (m Metric) Validate() error {
	if _, ok := metricLabels[strings.ToLower(m.Type)]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMetric, m.Type)
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return fmt.Errorf("%w: value must be finite", ErrInvalidMetric)
	}
	return nil
}

// Label returns the display label of the metric type.
func (m Metric) Label() string {
	return metricLabels[strings.ToLower(m.Type)]
}

// Validate checks the background override values.
func (b Background) Validate() error {
	if b.Color != "" && !colorPattern.MatchString(b.Color) {
		return fmt.Errorf("%w: background color %q", ErrInvalidColor, b.Color)
	}
	if strings.ContainsAny(b.Preset, " \t\n{};:\"'<>") {
		return fmt.Errorf("%w: preset %q", ErrInvalidBackground, b.Preset)
	}
	if strings.ContainsAny(b.Image, "\"'()\n\\") {
		return fmt.Errorf("%w: image URL %q", ErrInvalidBackground, b.Image)
	}
	return nil
}

// Validate checks premium attributes.
// Returns nil if p is nil (nil means a free visual).
func (p *Premium) Validate() error {
	if p == nil {
		return nil
	}
	if _, err := AspectSize(p.AspectRatio); err != nil {
		return err
	}
	switch strings.ToLower(p.Template) {
	case "", TemplateClassic, TemplateMinimal, TemplateBold:
	default:
		return fmt.Errorf("%w: %q (must be classic, minimal, or bold)", ErrInvalidTemplate, p.Template)
	}
	switch strings.ToLower(p.LogoPosition) {
	case "", LogoTopLeft, LogoTopRight, LogoBottomLeft, LogoBottomRight, LogoNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogoPosition, p.LogoPosition)
	}
	if strings.ContainsAny(p.Font, "/\\.{};\"'<>") {
		return fmt.Errorf("%w: %q", ErrInvalidFont, p.Font)
	}
	if p.Goal != nil && (*p.Goal <= 0 || math.IsNaN(*p.Goal) || math.IsInf(*p.Goal, 0)) {
		return fmt.Errorf("%w: must be a positive number", ErrInvalidGoal)
	}
	return nil
}

// FontEmbedding selects when font embedding CSS is collected for capture.
type FontEmbedding string

// Font embedding modes.
const (
	// FontEmbeddingAuto asks the capture backend whether its engine needs
	// fonts inlined. The answer is cached per Exporter.
	FontEmbeddingAuto FontEmbedding = "auto"
	// FontEmbeddingAlways always collects and injects font CSS.
	FontEmbeddingAlways FontEmbedding = "always"
	// FontEmbeddingNever never collects font CSS.
	FontEmbeddingNever FontEmbedding = "never"
)

// ParseFontEmbedding parses a mode name. An empty name means auto.
func ParseFontEmbedding(s string) (FontEmbedding, error) {
	switch m := FontEmbedding(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FontEmbeddingAuto, nil
	case FontEmbeddingAuto, FontEmbeddingAlways, FontEmbeddingNever:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (must be auto, always, or never)", ErrInvalidFontEmbedding, s)
	}
}

// NodeFilter reports whether a node is kept in the capture.
// Rejecting a node drops its whole subtree.
type NodeFilter func(*html.Node) bool

// RasterOptions configures one rasterization.
type RasterOptions struct {
	Width        int        // output width in pixels
	Height       int        // output height in pixels
	Quality      int        // JPEG quality 1-100, zero means DefaultQuality
	PixelRatio   float64    // device pixel ratio, zero means DefaultPixelRatio
	NodeFilter   NodeFilter // nil excludes script and noscript
	FontEmbedCSS string     // injected on the first attempt only
}

// withDefaults fills zero values.
func (o RasterOptions) withDefaults() RasterOptions {
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.PixelRatio == 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	return o
}

// Validate checks the raster options after defaults are applied.
func (o RasterOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, o.Width, o.Height)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: %d (must be between 1 and 100)", ErrInvalidQuality, o.Quality)
	}
	if o.PixelRatio <= 0 || math.IsNaN(o.PixelRatio) || math.IsInf(o.PixelRatio, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPixelRatio, o.PixelRatio)
	}
	return nil
}

// ExportOptions configures ExportDocument.
type ExportOptions struct {
	Width      int        // output width in pixels
	Height     int        // output height in pixels
	Watermark  string     // watermark text, empty means none
	NodeFilter NodeFilter // nil excludes script and noscript
	Upload     bool       // store the image through the configured Store
}

// ExportResult is a finished export.
type ExportResult struct {
	ID      string // unique export id
	DataURL string // data:image/jpeg;base64,...
	Width   int
	Height  int
	URL     string // public URL when the image was stored
}

// Bytes decodes the image bytes from the data URL.
func (r *ExportResult) Bytes() ([]byte, error) {
	_, data, err := DecodeDataURL(r.DataURL)
	return data, err
}

// DecodeDataURL splits a data URL into its media type and payload.
func DecodeDataURL(s string) (string, []byte, error) {
	return fetch.DecodeDataURL(s)
}

// Export stages reported in SkipEvent.
const (
	StageInline = "inline"
	StageFonts  = "fonts"
)

// SkipEvent reports a resource left out of an export.
// Skips never fail the export.
type SkipEvent struct {
	ExportID string
	Stage    string // StageInline or StageFonts
	URL      string
	Err      error
}
