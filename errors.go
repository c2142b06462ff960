package statcard

import (
	"errors"

	"github.com/alnah/go-statcard/internal/fetch"
	"github.com/alnah/go-statcard/internal/inline"
)

// Sentinel errors for library operations.
var (
	ErrRasterize         = errors.New("rasterization failed")
	ErrExportTimeout     = errors.New("export timed out")
	ErrExportInFlight    = errors.New("export already in progress for this document")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrScreenshot        = errors.New("failed to capture screenshot")
	ErrRootNotInDocument = errors.New("render root is not part of the document")
	ErrNilDocument       = errors.New("document is nil")
	ErrStore             = errors.New("storing image failed")
	ErrTemplateRender    = errors.New("visual template rendering failed")
	ErrPoolClosed        = errors.New("exporter pool is closed")

	// ErrInvalidDataURL is returned by DecodeDataURL for malformed input.
	ErrInvalidDataURL = fetch.ErrInvalidDataURL

	// ErrUnresolvableURL is reported through SkipEvent for a relative
	// reference in a document without a base URL.
	ErrUnresolvableURL = inline.ErrUnresolvable

	// Visual document validation errors.
	ErrEmptyHandle         = errors.New("handle cannot be empty")
	ErrNoMetrics           = errors.New("at least one metric is required")
	ErrInvalidMetric       = errors.New("invalid metric")
	ErrInvalidColor        = errors.New("invalid color")
	ErrInvalidBackground   = errors.New("invalid background")
	ErrInvalidAspectRatio  = errors.New("invalid aspect ratio")
	ErrInvalidTemplate     = errors.New("invalid template")
	ErrInvalidLogoPosition = errors.New("invalid logo position")
	ErrInvalidFont         = errors.New("invalid font")
	ErrInvalidGoal         = errors.New("invalid goal")

	// Export option validation errors.
	ErrInvalidDimensions    = errors.New("invalid dimensions")
	ErrInvalidQuality       = errors.New("invalid quality")
	ErrInvalidPixelRatio    = errors.New("invalid pixel ratio")
	ErrInvalidFontEmbedding = errors.New("invalid font embedding mode")

	// Asset loading errors.
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetPath      = errors.New("invalid asset path")
)
