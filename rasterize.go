package statcard

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/alnah/go-statcard/internal/fetch"
	"github.com/alnah/go-statcard/internal/pipeline"
)

// Rasterizer renders a capture page to JPEG bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, req RasterRequest) ([]byte, error)
	Close() error
}

// RasterRequest is one capture of a standalone page.
type RasterRequest struct {
	HTML       string  // complete capture page
	Width      int     // output width in pixels
	Height     int     // output height in pixels
	PixelRatio float64 // device pixel ratio; the layout viewport is Width/PixelRatio wide
	Quality    int     // JPEG quality 1-100
	SkipFonts  bool    // block web font requests instead of waiting for them
}

// Capabilities describes the capture engine behind a Rasterizer.
type Capabilities struct {
	// NeedsFontEmbedding is true when the engine does not load external font
	// URLs during capture, so fonts must be inlined into the page.
	NeedsFontEmbedding bool
}

// CapabilityProber is implemented by rasterizers that can describe their engine.
// Rasterizers without it are assumed to load fonts on their own.
type CapabilityProber interface {
	Capabilities(ctx context.Context) (Capabilities, error)
}

// Compile-time interface checks.
var (
	_ Rasterizer       = (*rodRasterizer)(nil)
	_ CapabilityProber = (*rodRasterizer)(nil)
)

// layoutSize converts an output size to CSS pixels at the given ratio.
func layoutSize(width, height int, ratio float64) (float64, float64) {
	return float64(width) / ratio, float64(height) / ratio
}

// Rasterize captures root as a JPEG data URL.
//
// The first attempt injects opts.FontEmbedCSS and waits for web fonts. If it
// fails for any reason, a warning is logged and a second attempt runs with
// web fonts blocked and no font CSS. The second failure is returned.
func (e *Exporter) Rasterize(ctx context.Context, doc *Document, root *html.Node, opts RasterOptions) (string, error) {
	if doc == nil {
		return "", ErrNilDocument
	}
	if !doc.Contains(root) {
		return "", ErrRootNotInDocument
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return e.rasterize(ctx, e.logger, doc, root, opts)
}

// rasterize runs the two attempts. Options must already be validated.
func (e *Exporter) rasterize(ctx context.Context, log zerolog.Logger, doc *Document, root *html.Node, opts RasterOptions) (string, error) {
	data, err := e.captureAttempt(ctx, doc, root, opts, opts.FontEmbedCSS, false)
	if err == nil {
		return fetch.EncodeDataURI("image/jpeg", data), nil
	}
	if ctx.Err() != nil {
		return "", contextError(ctx, err)
	}

	log.Warn().Err(err).Msg("capture with fonts failed, retrying without fonts")

	data, err = e.captureAttempt(ctx, doc, root, opts, "", true)
	if err != nil {
		if ctx.Err() != nil {
			return "", contextError(ctx, err)
		}
		return "", fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return fetch.EncodeDataURI("image/jpeg", data), nil
}

// captureAttempt builds the capture page and runs the backend once.
func (e *Exporter) captureAttempt(ctx context.Context, doc *Document, root *html.Node, opts RasterOptions, fontCSS string, skipFonts bool) ([]byte, error) {
	w, h := layoutSize(opts.Width, opts.Height, opts.PixelRatio)
	page, err := pipeline.BuildCapturePage(ctx, doc.view(), root, pipeline.CaptureOptions{
		Width:   int(math.Ceil(w)),
		Height:  int(math.Ceil(h)),
		FontCSS: fontCSS,
		Filter:  pipeline.NodeFilter(opts.NodeFilter),
	})
	if err != nil {
		return nil, err
	}

	data, err := e.rasterizer.Rasterize(ctx, RasterRequest{
		HTML:       page,
		Width:      opts.Width,
		Height:     opts.Height,
		PixelRatio: opts.PixelRatio,
		Quality:    opts.Quality,
		SkipFonts:  skipFonts,
	})
	if err != nil {
		return nil, err
	}
	if mt := mimetype.Detect(data); !mt.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: capture produced %s, want image/jpeg", ErrScreenshot, mt.String())
	}
	return data, nil
}

// needsFontEmbedding resolves the font embedding mode. In auto mode the
// backend is probed until one probe succeeds; that answer is kept for the
// Exporter's lifetime. A failed probe means no embedding for this export only.
func (e *Exporter) needsFontEmbedding(ctx context.Context, log zerolog.Logger) bool {
	switch e.cfg.fontEmbedding {
	case FontEmbeddingAlways:
		return true
	case FontEmbeddingNever:
		return false
	}

	e.probeMu.Lock()
	defer e.probeMu.Unlock()
	if e.probed {
		return e.embedFonts
	}

	prober, ok := e.rasterizer.(CapabilityProber)
	if !ok {
		e.probed = true
		return false
	}
	caps, err := prober.Capabilities(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("capability probe failed, fonts will not be embedded")
		return false
	}
	e.probed = true
	e.embedFonts = caps.NeedsFontEmbedding
	log.Debug().Bool("embed_fonts", e.embedFonts).Msg("probed capture engine")
	return e.embedFonts
}

// contextError maps a finished context to the error returned to the caller.
// A deadline becomes ErrExportTimeout; cancellation keeps context.Canceled.
func contextError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExportTimeout, cause)
	}
	return ctx.Err()
}
