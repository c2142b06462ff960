// Package statcard renders social-metrics visuals to JPEG images using
// headless Chrome.
//
// # Quick Start
//
// Create an exporter, export a visual, and close when done:
//
//	exp, err := statcard.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	res, err := exp.Export(ctx, statcard.VisualDocument{
//	    Handle:  "gopher",
//	    Period:  "March 2026",
//	    Metrics: []statcard.Metric{{Type: statcard.MetricFollowers, Value: 12300}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, _ := res.Bytes()
//	os.WriteFile("visual.jpg", data, 0644)
//
// # Export Pipeline
//
// ExportDocument works on any Document and runs these stages in order:
//
//  1. Watermark injection (non-premium visuals)
//  2. Resource inlining: external background images become data URIs
//  3. Font collection: @font-face rules with embedded font files, when the
//     capture engine needs them (see FontEmbedding)
//  4. Rasterization in two attempts: with fonts, then with fonts blocked
//
// Every mutation of the document is undone before ExportDocument returns,
// whatever the outcome. A resource that cannot be fetched is reported to the
// skip handler and left as is; it never fails the export.
//
// # Configuration
//
// Use functional options to customize the exporter:
//
//	exp, err := statcard.NewExporter(
//	    statcard.WithTimeout(time.Minute),
//	    statcard.WithBaseURL("https://cdn.example.com/"),
//	    statcard.WithFont("serif", statcard.Font{Family: "Playfair Display", Stylesheet: "/fonts/playfair.css"}),
//	    statcard.WithStore(store),
//	)
//
// # Parallel Processing
//
// For batch exports, use ExporterPool to manage multiple browser instances:
//
//	pool := statcard.NewExporterPool(4)
//	defer pool.Close()
//
//	exp, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(exp)
//	res, err := exp.Export(ctx, visual)
//
// # Custom Assets
//
// Override built-in stylesheets and templates using AssetLoader:
//
//	loader, err := statcard.NewAssetLoader("/path/to/assets")
//	exp, err := statcard.NewExporter(statcard.WithAssetLoader(loader))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   ├── base.css
//	│   └── backgrounds.css
//	└── templates/
//	    └── classic/
//	        ├── layout.html
//	        └── style.css
package statcard
