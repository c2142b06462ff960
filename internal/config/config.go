package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-statcard/internal/fileutil"
	"github.com/alnah/go-statcard/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits for multi-tenant safety.
const (
	MaxURLLength        = 2048 // Browser limit
	MaxUserAgentLength  = 200
	MaxWatermarkLength  = 50 // "statcard", "example.com"
	MaxFontNameLength   = 50
	MaxFontFamilyLength = 100
	MaxPathLength       = 4096
)

// appDir is the directory under the user config dir searched for configs.
const appDir = "go-statcard"

// Config holds all configuration for the statcard CLI.
type Config struct {
	Export  ExportConfig `yaml:"export"`
	Output  OutputConfig `yaml:"output"`
	Store   StoreConfig  `yaml:"store"`
	Assets  AssetsConfig `yaml:"assets"`
	Fonts   []FontConfig `yaml:"fonts"`
	Log     LogConfig    `yaml:"log"`
	Workers int          `yaml:"workers"` // 0 = auto
}

// ExportConfig defines exporter options.
type ExportConfig struct {
	Timeout       string `yaml:"timeout"`       // Go duration, e.g. "30s" (empty = default)
	FetchTimeout  string `yaml:"fetchTimeout"`  // Go duration, per fetched resource
	FontEmbedding string `yaml:"fontEmbedding"` // "auto", "always", "never"
	BaseURL       string `yaml:"baseURL"`       // Base for relative backgrounds and fonts
	UserAgent     string `yaml:"userAgent"`
	Watermark     string `yaml:"watermark"` // Text on free visuals (empty = default)
	NoWatermark   bool   `yaml:"noWatermark"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = current directory)
}

// StoreConfig defines where uploaded images go.
type StoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	PublicURL string `yaml:"publicURL"` // URL the directory is served from (empty = file URLs)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// FontConfig registers a font premium visuals may select.
type FontConfig struct {
	Name       string `yaml:"name"`
	Family     string `yaml:"family"`
	Stylesheet string `yaml:"stylesheet"` // URL of a stylesheet with its @font-face rules
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error (default: warn)
	Format string `yaml:"format"` // json, console (default: console)
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	// Validate export fields
	if _, err := c.Export.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Export.FetchTimeoutDuration(); err != nil {
		return err
	}
	switch strings.ToLower(c.Export.FontEmbedding) {
	case "", "auto", "always", "never":
		// valid
	default:
		return fmt.Errorf("%w: export.fontEmbedding %q (must be auto, always, or never)", ErrInvalidField, c.Export.FontEmbedding)
	}
	if err := validateURL("export.baseURL", c.Export.BaseURL); err != nil {
		return err
	}
	if err := validateFieldLength("export.userAgent", c.Export.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("export.watermark", c.Export.Watermark, MaxWatermarkLength); err != nil {
		return err
	}

	// Validate output and store fields
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if c.Store.Enabled && c.Store.Dir == "" {
		return fmt.Errorf("%w: store.dir: required when store is enabled", ErrInvalidField)
	}
	if err := validateFieldLength("store.dir", c.Store.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateURL("store.publicURL", c.Store.PublicURL); err != nil {
		return err
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	// Validate fonts
	seen := make(map[string]bool, len(c.Fonts))
	for i, f := range c.Fonts {
		field := fmt.Sprintf("fonts[%d]", i)
		if f.Name == "" || f.Family == "" {
			return fmt.Errorf("%w: %s: name and family are required", ErrInvalidField, field)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s: duplicate font name %q", ErrInvalidField, field, f.Name)
		}
		seen[f.Name] = true
		if err := validateFieldLength(field+".name", f.Name, MaxFontNameLength); err != nil {
			return err
		}
		if err := validateFieldLength(field+".family", f.Family, MaxFontFamilyLength); err != nil {
			return err
		}
		if err := validateFieldLength(field+".stylesheet", f.Stylesheet, MaxURLLength); err != nil {
			return err
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must be 0 (auto) or positive, got %d", ErrInvalidField, c.Workers)
	}

	return nil
}

// TimeoutDuration parses export.timeout. Empty means zero (use the default).
func (e ExportConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("export.timeout", e.Timeout)
}

// FetchTimeoutDuration parses export.fetchTimeout. Empty means zero (use the default).
func (e ExportConfig) FetchTimeoutDuration() (time.Duration, error) {
	return parseDuration("export.fetchTimeout", e.FetchTimeout)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidField, field, value)
	}
	return d, nil
}

// validateURL accepts an empty value or an absolute URL.
func validateURL(field, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(field, value, MaxURLLength); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %s: %q is not an absolute URL", ErrInvalidField, field, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: embedded assets, no store,
// library defaults for every export option.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{DefaultDir: ""},
		Store:  StoreConfig{Enabled: false},
		Assets: AssetsConfig{BasePath: ""},
		Log:    LogConfig{Level: "warn", Format: "console"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-statcard/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
