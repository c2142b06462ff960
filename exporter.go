package statcard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/alnah/go-statcard/internal/assets"
	"github.com/alnah/go-statcard/internal/dom"
	"github.com/alnah/go-statcard/internal/fetch"
	"github.com/alnah/go-statcard/internal/fonts"
	"github.com/alnah/go-statcard/internal/inline"
)

// RestoreFunc undoes the background rewrites of InlineResources.
// Calling it more than once is a no-op.
type RestoreFunc func()

// resourceInliner rewrites external backgrounds to data URIs.
type resourceInliner interface {
	Inline(ctx context.Context, doc *dom.Document, root *html.Node) (inline.RestoreFunc, error)
}

// fontCollector builds the font embedding stylesheet of a document.
type fontCollector interface {
	Collect(ctx context.Context, doc *dom.Document) (string, error)
}

// Compile-time interface checks.
var (
	_ resourceInliner = (*inline.Inliner)(nil)
	_ fontCollector   = (*fonts.Collector)(nil)
	_ Fetcher         = (*fetch.HTTPFetcher)(nil)
)

// Exporter rasterizes documents to JPEG images.
// Create with NewExporter, and Close when done to release the browser.
type Exporter struct {
	cfg               exporterConfig
	logger            zerolog.Logger
	onSkip            func(SkipEvent)
	fetcher           Fetcher
	rasterizer        Rasterizer
	store             Store
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	fonts             map[string]Font
	visuals           *visualRenderer

	// Stage constructors, replaced by tests.
	newInliner   func(inline.SkipFunc) resourceInliner
	newCollector func(fonts.SkipFunc) fontCollector
	newID        func() string

	probeMu    sync.Mutex
	probed     bool
	embedFonts bool
}

// NewExporter creates an Exporter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithStore, WithFont).
// Returns error if asset loading or template parsing fails.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout:       defaultTimeout,
			fetchTimeout:  defaultFetchTimeout,
			userAgent:     defaultUserAgent,
			fontEmbedding: FontEmbeddingAuto,
			watermark:     defaultWatermark,
		},
		logger:      defaultLogger(),
		assetLoader: assets.NewEmbeddedLoader(),
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	if _, err := ParseFontEmbedding(string(e.cfg.fontEmbedding)); err != nil {
		return nil, err
	}

	// Handle WithAssetPath: resolve to internal loader
	if e.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		e.assetLoader = resolver
	}

	// Handle WithAssetLoader (public interface): wrap to internal interface
	if e.publicAssetLoader != nil {
		e.assetLoader = &publicToInternalAdapter{pub: e.publicAssetLoader}
	}

	visuals, err := newVisualRenderer(e.assetLoader, e.cfg.baseURL, e.fonts)
	if err != nil {
		return nil, err
	}
	e.visuals = visuals

	if e.onSkip == nil {
		e.onSkip = e.logSkip
	}
	if e.fetcher == nil {
		e.fetcher = fetch.NewHTTPFetcher(e.cfg.fetchTimeout, fetch.WithUserAgent(e.cfg.userAgent))
	}
	if e.newInliner == nil {
		e.newInliner = func(skip inline.SkipFunc) resourceInliner {
			return inline.New(e.fetcher, skip)
		}
	}
	if e.newCollector == nil {
		e.newCollector = func(skip fonts.SkipFunc) fontCollector {
			return fonts.New(e.fetcher, skip)
		}
	}

	// Create rasterizer if not injected (e.g., by tests)
	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.cfg.timeout, e.logger)
	}

	return e, nil
}

// Close releases resources (headless Chrome browser).
func (e *Exporter) Close() error {
	if e.rasterizer != nil {
		return e.rasterizer.Close()
	}
	return nil
}

// InlineResources rewrites every external background image under root to a
// data URI. Failed fetches are reported to the skip handler and leave the
// element untouched. The returned RestoreFunc is never nil, even on error,
// and undoes every rewrite made so far.
func (e *Exporter) InlineResources(ctx context.Context, doc *Document, root *html.Node) (RestoreFunc, error) {
	if doc == nil {
		return func() {}, ErrNilDocument
	}
	if !doc.Contains(root) {
		return func() {}, ErrRootNotInDocument
	}
	return e.inlineResources(ctx, doc, root, "")
}

func (e *Exporter) inlineResources(ctx context.Context, doc *Document, root *html.Node, exportID string) (RestoreFunc, error) {
	in := e.newInliner(func(rawURL string, err error) {
		e.onSkip(SkipEvent{ExportID: exportID, Stage: StageInline, URL: rawURL, Err: err})
	})
	restore, err := in.Inline(ctx, doc.view(), root)
	if restore == nil {
		restore = func() {}
	}
	return RestoreFunc(restore), err
}

// CollectFontEmbedCSS returns the document's @font-face rules, one per family,
// with font files embedded as data URIs and size-adjust removed.
func (e *Exporter) CollectFontEmbedCSS(ctx context.Context, doc *Document) (string, error) {
	if doc == nil {
		return "", ErrNilDocument
	}
	return e.collectFonts(ctx, doc, "")
}

func (e *Exporter) collectFonts(ctx context.Context, doc *Document, exportID string) (string, error) {
	c := e.newCollector(func(rawURL string, err error) {
		e.onSkip(SkipEvent{ExportID: exportID, Stage: StageFonts, URL: rawURL, Err: err})
	})
	return c.Collect(ctx, doc.view())
}

// ExportDocument rasterizes root to a JPEG of opts.Width x opts.Height pixels.
//
// The document is mutated while the export runs (watermark, inlined
// backgrounds) and always put back before ExportDocument returns, on success,
// failure, timeout or panic alike. Only one export may run per document.
func (e *Exporter) ExportDocument(ctx context.Context, doc *Document, root *html.Node, opts ExportOptions) (*ExportResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if !doc.Contains(root) {
		return nil, ErrRootNotInDocument
	}
	raster := RasterOptions{Width: opts.Width, Height: opts.Height, NodeFilter: opts.NodeFilter}.withDefaults()
	if err := raster.Validate(); err != nil {
		return nil, err
	}

	if !doc.acquire() {
		return nil, ErrExportInFlight
	}
	defer doc.release()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	id := e.newID()
	log := e.logger.With().Str("export_id", id).Logger()
	log.Debug().Int("width", opts.Width).Int("height", opts.Height).Msg("export started")

	if opts.Watermark != "" {
		remove := injectWatermark(root, opts.Watermark)
		defer remove()
	}

	restore, err := e.inlineResources(ctx, doc, root, id)
	defer restore()
	if err != nil {
		return nil, stageError(ctx, "inlining resources", err)
	}

	if e.needsFontEmbedding(ctx, log) {
		css, err := e.collectFonts(ctx, doc, id)
		if err != nil {
			return nil, stageError(ctx, "collecting fonts", err)
		}
		raster.FontEmbedCSS = css
		log.Debug().Int("bytes", len(css)).Msg("font CSS collected")
	}

	dataURL, err := e.rasterize(ctx, log, doc, root, raster)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return nil, err
	}

	res := &ExportResult{ID: id, DataURL: dataURL, Width: opts.Width, Height: opts.Height}

	if opts.Upload && e.store != nil {
		data, err := res.Bytes()
		if err != nil {
			return nil, err
		}
		u, err := e.store.Put(ctx, id+".jpg", "image/jpeg", data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		res.URL = u
	}

	log.Info().Str("url", res.URL).Msg("export finished")
	return res, nil
}

// Export renders a visual document with the configured templates and
// rasterizes it at the size of its aspect ratio preset. Non-premium visuals
// carry the watermark. The image is uploaded when a Store is configured.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, v VisualDocument) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := v.Validate(); err != nil {
		return nil, err
	}

	rendered, err := e.visuals.Render(v)
	if err != nil {
		return nil, err
	}

	opts := ExportOptions{
		Width:  rendered.Size.Width,
		Height: rendered.Size.Height,
		Upload: e.store != nil,
	}
	if v.Premium == nil {
		opts.Watermark = e.cfg.watermark
	}
	return e.ExportDocument(ctx, rendered.Document, rendered.Root, opts)
}

// RenderVisual returns the document Export would rasterize for v, together
// with its render root and output size.
func (e *Exporter) RenderVisual(v VisualDocument) (*RenderedVisual, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return e.visuals.Render(v)
}

// logSkip is the default skip handler.
func (e *Exporter) logSkip(ev SkipEvent) {
	e.logger.Debug().
		Str("export_id", ev.ExportID).
		Str("stage", ev.Stage).
		Str("url", ev.URL).
		Err(ev.Err).
		Msg("resource skipped")
}

// stageError wraps a stage failure, turning a finished context into the
// export's context error.
func stageError(ctx context.Context, stage string, err error) error {
	if ctx.Err() != nil {
		return contextError(ctx, err)
	}
	return fmt.Errorf("%s: %w", stage, err)
}
