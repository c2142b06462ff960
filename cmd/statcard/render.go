package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/config"
	"github.com/alnah/go-statcard/internal/fileutil"
	"github.com/alnah/go-statcard/internal/hints"
)

// Sentinel errors for render operations.
var (
	ErrNoInput    = errors.New("no visuals file specified")
	ErrWriteImage = errors.New("failed to write image")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// imageExt is the extension of exported images.
const imageExt = ".jpg"

// RenderResult holds the outcome of a single visual export.
type RenderResult struct {
	Name       string
	OutputPath string
	URL        string // set when the image was uploaded
	Err        error
	Duration   time.Duration
}

// batchError reports a batch with failures. Each failure was already
// printed; Unwrap exposes the first one for the exit code.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d visual(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// batchParams groups parameters shared by every visual of a batch.
type batchParams struct {
	outDir    string
	fontNames []string
}

// runRenderCmd parses the render flags and exports every selected visual.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runRender(ctx, positional, flags, env)
}

// runRender orchestrates a batch export.
func runRender(ctx context.Context, positional []string, flags *renderFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	setMaxProcs(env, flags.common.verbose)

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common, envCfg)
	if err != nil {
		return err
	}
	logger, err := newLogger(flags.common, cfg.Log, env.Stderr)
	if err != nil {
		return err
	}

	visuals, err := loadVisuals(positional[0], env.Now())
	if err != nil {
		return err
	}
	visuals, err = selectVisuals(visuals, flags.only)
	if err != nil {
		return err
	}

	opts, err := exportSetup{
		cfg:         cfg,
		flags:       flags.export,
		env:         envCfg,
		logger:      logger,
		stderr:      env.Stderr,
		noWatermark: flags.noWatermark,
		upload:      flags.upload,
	}.exporterOptions()
	if err != nil {
		return err
	}

	outDir := resolveOutputDir(flags.output, cfg)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		return withHint(fmt.Errorf("%w: creating output directory: %w", ErrWriteImage, err), hints.ForOutputDirectory())
	}

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	size := min(statcard.ResolvePoolSize(workers), len(visuals))
	logger.Debug().Int("pool_size", size).Int("visuals", len(visuals)).Msg("starting batch")

	pool := env.NewPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing exporter pool")
		}
	}()

	results := renderBatch(ctx, pool, visuals, &batchParams{outDir: outDir, fontNames: fontNames(cfg)})

	failed, firstErr := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return &batchError{failed: failed, total: len(results), first: firstErr}
	}
	return nil
}

// resolveOutputDir picks the output directory: flag > config > current directory.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	if cfg.Output.DefaultDir != "" {
		return cfg.Output.DefaultDir
	}
	return "."
}

// renderBatch exports visuals concurrently using the exporter pool.
// Results are returned in input order.
func renderBatch(ctx context.Context, pool Pool, visuals []namedVisual, params *batchParams) []RenderResult {
	if len(visuals) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(visuals))

	results := make([]RenderResult, len(visuals))
	var wg sync.WaitGroup
	jobs := make(chan int, len(visuals))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire(ctx)
			if err != nil {
				// Exporter creation failed, mark the jobs this worker takes as failed
				for idx := range jobs {
					results[idx] = RenderResult{Name: visuals[idx].Name, Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{Name: visuals[idx].Name, Err: ctx.Err()}
					continue
				}
				results[idx] = renderVisual(ctx, exp, visuals[idx], params)
			}
		}()
	}

	for i := range visuals {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderVisual exports one visual and writes its image.
func renderVisual(ctx context.Context, exp Exporter, v namedVisual, params *batchParams) RenderResult {
	start := time.Now()
	result := RenderResult{
		Name:       v.Name,
		OutputPath: filepath.Join(params.outDir, v.Name+imageExt),
	}

	res, err := exp.Export(ctx, v.Doc)
	if err != nil {
		if errors.Is(err, statcard.ErrInvalidFont) {
			err = withHint(err, hints.ForFontNotRegistered(params.fontNames))
		}
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.URL = res.URL

	data, err := res.Bytes()
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(result.OutputPath, data, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteImage, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// printResults prints each result and the summary. Returns the number of
// failures and the first failure.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) (int, error) {
	var failed, succeeded int
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Name, r.Err, hintFor(r.Err))
			continue
		}
		succeeded++

		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.Name, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.URL != "" {
			fmt.Fprintf(env.Stdout, "  uploaded: %s\n", r.URL)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed, firstErr
}
