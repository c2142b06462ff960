package main

import (
	"errors"
	"os"
	"strings"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/config"
	"github.com/alnah/go-statcard/internal/hints"
	"github.com/alnah/go-statcard/internal/logging"
)

// Exit codes for the statcard CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All visuals exported
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or visual document
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitTimeout = 5 // Export deadline exceeded
)

// commandError attaches a hint to an error without changing its identity.
type commandError struct {
	err  error
	hint string
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// withHint wraps err with a hint printed after the error message.
func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &commandError{err: err, hint: hint}
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Timeouts (exit 5)
	if errors.Is(err, statcard.ErrExportTimeout) {
		return ExitTimeout
	}

	// Browser errors (exit 4)
	if errors.Is(err, statcard.ErrBrowserConnect) ||
		errors.Is(err, statcard.ErrPageCreate) ||
		errors.Is(err, statcard.ErrPageLoad) ||
		errors.Is(err, statcard.ErrScreenshot) ||
		errors.Is(err, statcard.ErrRasterize) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadVisuals) ||
		errors.Is(err, ErrWriteImage) ||
		errors.Is(err, statcard.ErrStore) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, ErrParseVisuals) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrNoVisuals) ||
		errors.Is(err, ErrVisualNotFound) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, statcard.ErrEmptyHandle) ||
		errors.Is(err, statcard.ErrNoMetrics) ||
		errors.Is(err, statcard.ErrInvalidMetric) ||
		errors.Is(err, statcard.ErrInvalidColor) ||
		errors.Is(err, statcard.ErrInvalidBackground) ||
		errors.Is(err, statcard.ErrInvalidAspectRatio) ||
		errors.Is(err, statcard.ErrInvalidTemplate) ||
		errors.Is(err, statcard.ErrInvalidLogoPosition) ||
		errors.Is(err, statcard.ErrInvalidFont) ||
		errors.Is(err, statcard.ErrInvalidGoal) ||
		errors.Is(err, statcard.ErrInvalidFontEmbedding) ||
		errors.Is(err, statcard.ErrStyleNotFound) ||
		errors.Is(err, statcard.ErrTemplateSetNotFound) ||
		errors.Is(err, statcard.ErrIncompleteTemplateSet) ||
		errors.Is(err, statcard.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintForError returns the hint of well-known failures.
func hintForError(err error) string {
	switch {
	case errors.Is(err, statcard.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, statcard.ErrExportTimeout):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedConfigPaths(err))
	case errors.Is(err, statcard.ErrInvalidTemplate):
		return hints.ForTemplateNotFound([]string{statcard.TemplateClassic, statcard.TemplateMinimal, statcard.TemplateBold})
	}
	return ""
}

// searchedConfigPaths extracts the locations listed by a config lookup failure.
func searchedConfigPaths(err error) []string {
	_, tried, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(tried, ", ")
}
