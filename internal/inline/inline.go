// Package inline rewrites external background images of a subtree as data URIs.
//
// The capture engine may not follow external image references while it
// rasterizes, so every element whose computed background-image points at an
// external URL gets an inline style override carrying the image bytes. The
// rewrite is temporary: Inline returns a RestoreFunc that puts every touched
// style attribute back exactly as it was.
package inline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/alnah/go-statcard/internal/dom"
	"github.com/alnah/go-statcard/internal/fetch"
)

// ErrUnresolvable is reported for relative references without a base URL.
var ErrUnresolvable = errors.New("cannot resolve relative URL without base")

// backgroundImage is the property rewritten by the inliner.
const backgroundImage = "background-image"

// RestoreFunc undoes the rewrites of one Inline call. It is safe to call
// more than once; calls after the first do nothing.
type RestoreFunc func()

// SkipFunc receives resources that were left un-inlined and why.
type SkipFunc func(rawURL string, err error)

// Inliner converts background images to data URIs.
type Inliner struct {
	fetcher fetch.Fetcher
	onSkip  SkipFunc
}

// New creates an Inliner. onSkip may be nil.
func New(f fetch.Fetcher, onSkip SkipFunc) *Inliner {
	return &Inliner{fetcher: f, onSkip: onSkip}
}

// Inline walks root and its descendants in document order and inlines every
// external url() of their computed background-image, one fetch at a time.
//
// A failed fetch leaves that element untouched and is reported to the skip
// hook. If ctx ends, the walk stops and the context error is returned along
// with a RestoreFunc covering the rewrites already made. The returned
// RestoreFunc is never nil.
func (in *Inliner) Inline(ctx context.Context, doc *dom.Document, root *html.Node) (RestoreFunc, error) {
	cascade := dom.NewCascade(doc.BaseURL, dom.DocumentSheets(doc)...)

	var (
		snapshots []dom.AttrSnapshot
		walkErr   error
	)

	dom.Elements(root, func(n *html.Node) bool {
		computed, ok := cascade.Computed(n, backgroundImage, "background")
		if !ok || !hasExternalURL(computed.Value) {
			return true
		}

		value, changed, err := in.rewrite(ctx, computed)
		if err != nil {
			walkErr = err
			return false
		}
		if !changed {
			return true
		}

		snapshots = append(snapshots, dom.SnapshotAttr(n, "style"))
		dom.SetInlineProperty(n, backgroundImage, value, computed.Important)
		return true
	})

	return newRestore(snapshots), walkErr
}

// rewrite replaces the external url() references of c with data URIs.
// It returns the new value and whether anything was replaced. Only context
// errors are returned; fetch failures are reported and skipped.
func (in *Inliner) rewrite(ctx context.Context, c dom.Computed) (string, bool, error) {
	var (
		changed bool
		ctxErr  error
	)

	value := dom.ReplaceURLs(c.Value, func(target string) (string, bool) {
		if ctxErr != nil || strings.TrimSpace(target) == "" || dom.IsDataURI(target) {
			return "", false
		}

		abs := dom.ResolveURL(c.Base, target)
		if abs == nil {
			in.skip(target, ErrUnresolvable)
			return "", false
		}

		res, err := in.fetcher.Fetch(ctx, abs.String())
		if err != nil {
			if ctx.Err() != nil {
				ctxErr = ctx.Err()
				return "", false
			}
			in.skip(abs.String(), err)
			return "", false
		}

		changed = true
		return fetch.DataURI(res), true
	})

	if ctxErr != nil {
		return "", false, ctxErr
	}
	return value, changed, nil
}

func (in *Inliner) skip(rawURL string, err error) {
	if in.onSkip != nil {
		in.onSkip(rawURL, err)
	}
}

// hasExternalURL reports whether value holds at least one non-data url().
func hasExternalURL(value string) bool {
	for _, ref := range dom.FindURLs(value) {
		if strings.TrimSpace(ref.Target) != "" && !ref.IsData() {
			return true
		}
	}
	return false
}

// newRestore returns a one-shot function restoring snapshots in reverse order.
func newRestore(snapshots []dom.AttrSnapshot) RestoreFunc {
	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(snapshots) - 1; i >= 0; i-- {
				snapshots[i].Restore()
			}
		})
	}
}
