package main

import (
	"context"
	"fmt"

	statcard "github.com/alnah/go-statcard"
)

// Exporter is the part of statcard.Exporter the commands use.
type Exporter interface {
	Export(ctx context.Context, v statcard.VisualDocument) (*statcard.ExportResult, error)
	RenderVisual(v statcard.VisualDocument) (*statcard.RenderedVisual, error)
	CollectFontEmbedCSS(ctx context.Context, doc *statcard.Document) (string, error)
}

// Compile-time interface implementation check.
var _ Exporter = (*statcard.Exporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (Exporter, error)
	Release(Exporter)
	Size() int
	Close() error
}

// poolAdapter exposes a statcard.ExporterPool as a Pool.
type poolAdapter struct {
	pool *statcard.ExporterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// newExporterPool is the production pool factory.
func newExporterPool(size int, opts ...statcard.Option) Pool {
	return &poolAdapter{pool: statcard.NewExporterPool(size, opts...)}
}

func (a *poolAdapter) Acquire(ctx context.Context) (Exporter, error) {
	e, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Release panics when e did not come from this adapter (programmer error).
func (a *poolAdapter) Release(e Exporter) {
	exp, ok := e.(*statcard.Exporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
