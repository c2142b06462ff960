package statcard

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-statcard/internal/fetch"
)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout       time.Duration
	fetchTimeout  time.Duration
	userAgent     string
	fontEmbedding FontEmbedding
	baseURL       string
	assetPath     string
	watermark     string
}

// Defaults used when no option overrides them.
const (
	defaultTimeout      = 30 * time.Second
	defaultFetchTimeout = fetch.DefaultTimeout
	defaultWatermark    = "statcard"
	defaultUserAgent    = "go-statcard/1"
)

// Fetcher retrieves the bytes behind a URL for inlining.
type Fetcher = fetch.Fetcher

// Resource is a fetched resource.
type Resource = fetch.Resource

// WithTimeout sets the overall export deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("statcard: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithFetchTimeout sets the per-resource fetch timeout of the default fetcher.
// A resource that times out is skipped like any other failed fetch.
// Panics if d <= 0.
func WithFetchTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("statcard: WithFetchTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.fetchTimeout = d
	}
}

// WithUserAgent sets the User-Agent header of the default fetcher.
func WithUserAgent(ua string) Option {
	return func(e *Exporter) {
		e.cfg.userAgent = ua
	}
}

// WithLogger sets the logger. The default logs warnings to stderr.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithSkipHandler receives every resource left out of an export.
// The default logs skips at debug level.
func WithSkipHandler(fn func(SkipEvent)) Option {
	return func(e *Exporter) {
		e.onSkip = fn
	}
}

// WithFetcher replaces the HTTP fetcher used by the inliner and the font collector.
func WithFetcher(f Fetcher) Option {
	return func(e *Exporter) {
		e.fetcher = f
	}
}

// WithRasterizer replaces the headless Chrome backend.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Exporter) {
		e.rasterizer = r
	}
}

// WithFontEmbedding selects when font CSS is collected. Default is FontEmbeddingAuto.
func WithFontEmbedding(m FontEmbedding) Option {
	return func(e *Exporter) {
		e.cfg.fontEmbedding = m
	}
}

// WithStore enables uploads of exported images.
func WithStore(s Store) Option {
	return func(e *Exporter) {
		e.store = s
	}
}

// WithAssetPath loads styles and templates from a directory, falling back
// to the embedded defaults for anything missing.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom loader for styles and templates.
// Takes precedence over WithAssetPath.
func WithAssetLoader(l AssetLoader) Option {
	return func(e *Exporter) {
		e.publicAssetLoader = l
	}
}

// WithBaseURL sets the base URL of documents rendered by Export.
// Relative background images and font URLs resolve against it.
func WithBaseURL(u string) Option {
	return func(e *Exporter) {
		e.cfg.baseURL = u
	}
}

// WithWatermark sets the text stamped on non-premium visuals.
// An empty text disables the watermark.
func WithWatermark(text string) Option {
	return func(e *Exporter) {
		e.cfg.watermark = text
	}
}

// WithFont registers a font that premium visuals may select by name.
func WithFont(name string, f Font) Option {
	return func(e *Exporter) {
		if e.fonts == nil {
			e.fonts = make(map[string]Font)
		}
		e.fonts[name] = f
	}
}

// defaultLogger writes warnings and errors to stderr.
func defaultLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}
