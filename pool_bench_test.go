//go:build bench

package statcard

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	workers := []int{0, 1, 2, 4, 8}

	for _, w := range workers {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = ResolvePoolSize(w)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// benchPool builds a warmed pool backed by a mock rasterizer.
func benchPool(b *testing.B, size int) *ExporterPool {
	b.Helper()

	pool := NewExporterPool(size,
		WithRasterizer(&mockRasterizer{}),
		WithFetcher(newMockFetcher(nil)),
		WithLogger(zerolog.Nop()),
		WithFontEmbedding(FontEmbeddingNever),
	)
	exporters := make([]*Exporter, size)
	for i := range exporters {
		e, err := pool.Acquire(context.Background())
		if err != nil {
			b.Fatalf("Acquire() unexpected error: %v", err)
		}
		exporters[i] = e
	}
	for _, e := range exporters {
		pool.Release(e)
	}
	return pool
}

// BenchmarkExporterPoolAcquireRelease benchmarks the acquire/release cycle.
func BenchmarkExporterPoolAcquireRelease(b *testing.B) {
	for _, size := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			pool := benchPool(b, size)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				e, _ := pool.Acquire(ctx)
				pool.Release(e)
			}

			b.StopTimer()
			_ = pool.Close()
		})
	}
}

// BenchmarkExporterPoolContention benchmarks the pool under contention.
func BenchmarkExporterPoolContention(b *testing.B) {
	poolSize := 4

	for _, g := range []int{4, 8, 16, 32} {
		b.Run(fmt.Sprintf("goroutines_%d", g), func(b *testing.B) {
			pool := benchPool(b, poolSize)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			var wg sync.WaitGroup
			opsPerGoroutine := max(b.N/g, 1)

			for i := 0; i < g; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < opsPerGoroutine; j++ {
						e, _ := pool.Acquire(ctx)
						runtime.Gosched()
						pool.Release(e)
					}
				}()
			}
			wg.Wait()

			b.StopTimer()
			_ = pool.Close()
		})
	}
}

// BenchmarkExport benchmarks a full export with the capture backend mocked.
func BenchmarkExport(b *testing.B) {
	e, err := NewExporter(
		WithRasterizer(&mockRasterizer{}),
		WithFetcher(newMockFetcher(nil)),
		WithLogger(zerolog.Nop()),
		WithFontEmbedding(FontEmbeddingNever),
	)
	if err != nil {
		b.Fatalf("NewExporter() unexpected error: %v", err)
	}
	defer e.Close()

	v := VisualDocument{
		Handle:  "alice",
		Period:  "March 2026",
		Metrics: []Metric{{Type: MetricFollowers, Value: 12300}, {Type: MetricLikes, Value: 4500}},
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Export(ctx, v); err != nil {
			b.Fatal(err)
		}
	}
}
