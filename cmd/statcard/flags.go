package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// exportFlags holds flags that configure the exporters.
type exportFlags struct {
	timeout       string
	fetchTimeout  string
	baseURL       string
	fontEmbedding string
	assetPath     string
	userAgent     string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common      commonFlags
	export      exportFlags
	output      string
	workers     int
	only        []string
	noWatermark bool
	upload      bool
}

// fontsFlags holds all flags for the fonts command.
type fontsFlags struct {
	common commonFlags
	export exportFlags
	name   string
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timings and debug logs")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
}

func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout per visual (e.g., 30s, 2m)")
	fs.StringVar(&f.fetchTimeout, "fetch-timeout", "", "timeout per fetched background or font")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL for relative backgrounds and fonts")
	fs.StringVar(&f.fontEmbedding, "font-embedding", "", "font embedding: auto, always, never")
	fs.StringVar(&f.assetPath, "assets", "", "directory overriding the embedded styles and templates")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent of resource fetches")
}

// parseRenderFlags parses the render command flags.
func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringSliceVar(&f.only, "only", nil, "render only the named visuals")
	fs.BoolVar(&f.noWatermark, "no-watermark", false, "do not watermark free visuals")
	fs.BoolVar(&f.upload, "upload", false, "store images through the configured store")

	addCommonFlags(fs, &f.common)
	addExportFlags(fs, &f.export)

	fs.Usage = func() { printRenderUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseFontsFlags parses the fonts command flags.
func parseFontsFlags(args []string, usage io.Writer) (*fontsFlags, []string, error) {
	fs := flag.NewFlagSet("fonts", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &fontsFlags{}

	fs.StringVarP(&f.name, "name", "n", "", "visual to inspect (default: first)")

	addCommonFlags(fs, &f.common)
	addExportFlags(fs, &f.export)

	fs.Usage = func() { printFontsUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
