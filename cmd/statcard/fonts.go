package main

import (
	"context"
	"errors"
	"fmt"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/hints"
)

// runFontsCmd parses the fonts flags and prints the font embedding CSS of
// one visual.
func runFontsCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseFontsFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runFonts(ctx, positional, flags, env)
}

// runFonts renders a visual and prints the @font-face rules an export would
// embed, with every font URL inlined.
func runFonts(ctx context.Context, positional []string, flags *fontsFlags, env *Environment) error {
	if len(positional) == 0 {
		return ErrNoInput
	}

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
	v := visuals[0]
	if flags.name != "" {
		selected, err := selectVisuals(visuals, []string{flags.name})
		if err != nil {
			return err
		}
		v = selected[0]
	}

	opts, err := exportSetup{
		cfg:    cfg,
		flags:  flags.export,
		env:    envCfg,
		logger: logger,
		stderr: env.Stderr,
	}.exporterOptions()
	if err != nil {
		return err
	}
	// Collection always runs here, whatever the engine needs.
	opts = append(opts, statcard.WithFontEmbedding(statcard.FontEmbeddingAlways))

	pool := env.NewPool(1, opts...)
	defer func() { _ = pool.Close() }()

	exp, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(exp)

	rendered, err := exp.RenderVisual(v.Doc)
	if err != nil {
		if errors.Is(err, statcard.ErrInvalidFont) {
			return withHint(err, hints.ForFontNotRegistered(fontNames(cfg)))
		}
		return err
	}

	css, err := exp.CollectFontEmbedCSS(ctx, rendered.Document)
	if err != nil {
		return err
	}

	if css == "" {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "%s: no web fonts to embed\n", v.Name)
		}
		return nil
	}
	fmt.Fprintln(env.Stdout, css)
	return nil
}
