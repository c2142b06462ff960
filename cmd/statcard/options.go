package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/config"
	"github.com/alnah/go-statcard/internal/hints"
	"github.com/alnah/go-statcard/internal/logging"
)

// Sentinel errors for option resolution.
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// loadConfig loads the config named by the flag or STATCARD_CONFIG and
// layers the environment on top of it.
func loadConfig(common commonFlags, env *envConfig) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// newLogger builds the CLI logger. --verbose forces debug and --quiet
// forces error, otherwise the configured level applies.
func newLogger(common commonFlags, cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := cfg.Level
	switch {
	case common.verbose:
		level = "debug"
	case common.quiet:
		level = "error"
	}

	format := common.logFormat
	if format == "" {
		format = cfg.Format
	}
	if format == "" {
		format = logging.FormatConsole
	}

	return logging.New(logging.Config{Level: level, Format: format, Output: w})
}

// resolveTimeoutWithEnv picks the export timeout.
// Precedence: flag > env > config. Zero means the library default.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, configValue string) (time.Duration, error) {
	if flagValue != "" {
		return parsePositiveDuration(flagValue)
	}
	if envValue > 0 {
		return envValue, nil
	}
	if configValue != "" {
		return parsePositiveDuration(configValue)
	}
	return 0, nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (use format like 30s, 1m, 2m30s)", ErrInvalidTimeout, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidTimeout, s)
	}
	return d, nil
}

// validateWorkers rejects negative worker counts. Zero means auto.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be 0 for auto or positive)", ErrInvalidWorkerCount, n)
	}
	return nil
}

// exportSetup gathers what the exporter options are built from.
type exportSetup struct {
	cfg         *config.Config
	flags       exportFlags
	env         *envConfig
	logger      zerolog.Logger
	stderr      io.Writer
	noWatermark bool
	upload      bool
}

// exporterOptions turns config, environment and flags into exporter options.
func (s exportSetup) exporterOptions() ([]statcard.Option, error) {
	opts := []statcard.Option{
		statcard.WithLogger(s.logger),
		statcard.WithSkipHandler(s.skipHandler()),
	}

	timeout, err := resolveTimeoutWithEnv(s.flags.timeout, s.env.Timeout, s.cfg.Export.Timeout)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, statcard.WithTimeout(timeout))
	}

	fetchTimeout, err := resolveTimeoutWithEnv(s.flags.fetchTimeout, 0, s.cfg.Export.FetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetch timeout: %w", err)
	}
	if fetchTimeout > 0 {
		opts = append(opts, statcard.WithFetchTimeout(fetchTimeout))
	}

	mode, err := statcard.ParseFontEmbedding(firstNonEmpty(s.flags.fontEmbedding, s.cfg.Export.FontEmbedding))
	if err != nil {
		return nil, err
	}
	opts = append(opts, statcard.WithFontEmbedding(mode))

	if base := firstNonEmpty(s.flags.baseURL, s.cfg.Export.BaseURL); base != "" {
		opts = append(opts, statcard.WithBaseURL(base))
	}
	if ua := firstNonEmpty(s.flags.userAgent, s.cfg.Export.UserAgent); ua != "" {
		opts = append(opts, statcard.WithUserAgent(ua))
	}
	if path := firstNonEmpty(s.flags.assetPath, s.cfg.Assets.BasePath); path != "" {
		opts = append(opts, statcard.WithAssetPath(path))
	}

	switch {
	case s.noWatermark || s.cfg.Export.NoWatermark:
		opts = append(opts, statcard.WithWatermark(""))
	case s.cfg.Export.Watermark != "":
		opts = append(opts, statcard.WithWatermark(s.cfg.Export.Watermark))
	}

	for _, f := range s.cfg.Fonts {
		opts = append(opts, statcard.WithFont(f.Name, statcard.Font{Family: f.Family, Stylesheet: f.Stylesheet}))
	}

	if s.upload || s.cfg.Store.Enabled {
		if s.cfg.Store.Dir == "" {
			return nil, fmt.Errorf("%w: uploads need store.dir or STATCARD_STORE_DIR", config.ErrInvalidField)
		}
		store, err := statcard.NewFileStore(s.cfg.Store.Dir, s.cfg.Store.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", statcard.ErrStore, err)
		}
		opts = append(opts, statcard.WithStore(store))
	}

	return opts, nil
}

// skipHandler logs skipped resources and prints the relative URL hint once.
func (s exportSetup) skipHandler() func(statcard.SkipEvent) {
	var once sync.Once
	return func(ev statcard.SkipEvent) {
		s.logger.Info().
			Str("export_id", ev.ExportID).
			Str("stage", ev.Stage).
			Str("url", ev.URL).
			Err(ev.Err).
			Msg("resource skipped")
		if errors.Is(ev.Err, statcard.ErrUnresolvableURL) {
			once.Do(func() {
				fmt.Fprintf(s.stderr, "warning: skipped relative URL %s%s\n", ev.URL, hints.ForRelativeURL())
			})
		}
	}
}

// fontNames returns the registered font names, for hints.
func fontNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Fonts))
	for _, f := range cfg.Fonts {
		names = append(names, f.Name)
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
