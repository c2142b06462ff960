package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/config"
	"github.com/alnah/go-statcard/internal/logging"
)

// ---------------------------------------------------------------------------
// TestResolveTimeoutWithEnv - Timeout precedence
// ---------------------------------------------------------------------------

func TestResolveTimeoutWithEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flagValue   string
		envValue    time.Duration
		configValue string
		want        time.Duration
		errSubstr   string
	}{
		{name: "nothing set", want: 0},
		{name: "flag only", flagValue: "2m", want: 2 * time.Minute},
		{name: "env only", envValue: 45 * time.Second, want: 45 * time.Second},
		{name: "config only", configValue: "30s", want: 30 * time.Second},
		{name: "flag overrides env and config", flagValue: "5m", envValue: 45 * time.Second, configValue: "30s", want: 5 * time.Minute},
		{name: "env overrides config", envValue: 2 * time.Minute, configValue: "30s", want: 2 * time.Minute},
		{name: "combined duration", flagValue: "1m30s", want: 90 * time.Second},
		{name: "invalid flag format", flagValue: "abc", errSubstr: "invalid timeout"},
		{name: "invalid config format", configValue: "xyz", errSubstr: "invalid timeout"},
		{name: "negative duration", flagValue: "-5s", errSubstr: "must be positive"},
		{name: "zero duration", flagValue: "0s", errSubstr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeoutWithEnv(tt.flagValue, tt.envValue, tt.configValue)
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("error = %v, want containing %q", err, tt.errSubstr)
				}
				if !errors.Is(err, ErrInvalidTimeout) {
					t.Errorf("error = %v, want ErrInvalidTimeout", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveTimeoutWithEnv(%q, %v, %q) = %v, want %v", tt.flagValue, tt.envValue, tt.configValue, got, tt.want)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 8, 64} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) = %v, want nil", n, err)
		}
	}
	if err := validateWorkers(-1); !errors.Is(err, ErrInvalidWorkerCount) {
		t.Errorf("validateWorkers(-1) = %v, want ErrInvalidWorkerCount", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Level and format selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		common    commonFlags
		cfg       config.LogConfig
		wantLevel zerolog.Level
		wantErr   error
	}{
		{name: "config level", cfg: config.LogConfig{Level: "info"}, wantLevel: zerolog.InfoLevel},
		{name: "verbose wins", common: commonFlags{verbose: true}, cfg: config.LogConfig{Level: "error"}, wantLevel: zerolog.DebugLevel},
		{name: "quiet wins", common: commonFlags{quiet: true}, cfg: config.LogConfig{Level: "debug"}, wantLevel: zerolog.ErrorLevel},
		{name: "json format flag", common: commonFlags{logFormat: "json"}, cfg: config.LogConfig{Level: "warn"}, wantLevel: zerolog.WarnLevel},
		{name: "bad level", cfg: config.LogConfig{Level: "loud"}, wantErr: logging.ErrInvalidLevel},
		{name: "bad format", common: commonFlags{logFormat: "xml"}, wantErr: logging.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := newLogger(tt.common, tt.cfg, &buf)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("newLogger() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if logger.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.wantLevel)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExporterOptions - Config, env and flags to exporter options
// ---------------------------------------------------------------------------

func TestExporterOptions(t *testing.T) {
	t.Parallel()

	base := func() exportSetup {
		return exportSetup{
			cfg:    config.DefaultConfig(),
			env:    &envConfig{},
			logger: zerolog.Nop(),
			stderr: &bytes.Buffer{},
		}
	}

	t.Run("defaults build an exporter", func(t *testing.T) {
		t.Parallel()

		opts, err := base().exporterOptions()
		if err != nil {
			t.Fatalf("exporterOptions() unexpected error: %v", err)
		}
		e, err := statcard.NewExporter(opts...)
		if err != nil {
			t.Fatalf("NewExporter() unexpected error: %v", err)
		}
		_ = e.Close()
	})

	t.Run("registered fonts are selectable", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.cfg.Fonts = []config.FontConfig{{Name: "lora", Family: "Lora", Stylesheet: "https://fonts.example.test/lora.css"}}
		opts, err := s.exporterOptions()
		if err != nil {
			t.Fatalf("exporterOptions() unexpected error: %v", err)
		}
		e, err := statcard.NewExporter(opts...)
		if err != nil {
			t.Fatalf("NewExporter() unexpected error: %v", err)
		}
		defer func() { _ = e.Close() }()

		rendered, err := e.RenderVisual(statcard.VisualDocument{
			Handle:  "alice",
			Metrics: []statcard.Metric{{Type: statcard.MetricPosts, Value: 3}},
			Premium: &statcard.Premium{Font: "lora"},
		})
		if err != nil {
			t.Fatalf("RenderVisual() unexpected error: %v", err)
		}
		page, err := rendered.Document.HTML()
		if err != nil {
			t.Fatalf("HTML() unexpected error: %v", err)
		}
		if !strings.Contains(page, "https://fonts.example.test/lora.css") {
			t.Error("font stylesheet missing from rendered visual")
		}
	})

	t.Run("upload creates the store directory", func(t *testing.T) {
		t.Parallel()

		s := base()
		s.upload = true
		s.cfg.Store.Dir = t.TempDir() + "/uploads"
		if _, err := s.exporterOptions(); err != nil {
			t.Fatalf("exporterOptions() unexpected error: %v", err)
		}
	})

	errTests := []struct {
		name    string
		mutate  func(*testing.T, *exportSetup)
		wantErr error
	}{
		{
			name:    "bad timeout flag",
			mutate:  func(_ *testing.T, s *exportSetup) { s.flags.timeout = "fast" },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "bad fetch timeout config",
			mutate:  func(_ *testing.T, s *exportSetup) { s.cfg.Export.FetchTimeout = "-1s" },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "bad font embedding",
			mutate:  func(_ *testing.T, s *exportSetup) { s.flags.fontEmbedding = "maybe" },
			wantErr: statcard.ErrInvalidFontEmbedding,
		},
		{
			name:    "store enabled without dir",
			mutate:  func(_ *testing.T, s *exportSetup) { s.cfg.Store.Enabled = true },
			wantErr: config.ErrInvalidField,
		},
		{
			name: "relative public URL",
			mutate: func(t *testing.T, s *exportSetup) {
				s.upload = true
				s.cfg.Store.Dir = t.TempDir()
				s.cfg.Store.PublicURL = "/images/"
			},
			wantErr: statcard.ErrStore,
		},
	}

	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := base()
			tt.mutate(t, &s)
			if _, err := s.exporterOptions(); !errors.Is(err, tt.wantErr) {
				t.Errorf("exporterOptions() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSkipHandler_RelativeURLHintOnce(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	s := exportSetup{logger: zerolog.Nop(), stderr: &stderr}
	handle := s.skipHandler()

	handle(statcard.SkipEvent{Stage: statcard.StageInline, URL: "/a.png", Err: statcard.ErrUnresolvableURL})
	handle(statcard.SkipEvent{Stage: statcard.StageInline, URL: "/b.png", Err: statcard.ErrUnresolvableURL})
	handle(statcard.SkipEvent{Stage: statcard.StageFonts, URL: "https://x.test/f.woff2", Err: errors.New("404")})

	out := stderr.String()
	if strings.Count(out, "hint:") != 1 {
		t.Errorf("want exactly one hint, got %q", out)
	}
	if !strings.Contains(out, "/a.png") || strings.Contains(out, "/b.png") {
		t.Errorf("hint must name the first skipped URL only, got %q", out)
	}
}
