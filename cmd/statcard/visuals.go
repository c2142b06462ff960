package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	statcard "github.com/alnah/go-statcard"
	"github.com/alnah/go-statcard/internal/assets"
	"github.com/alnah/go-statcard/internal/dateutil"
	"github.com/alnah/go-statcard/internal/yamlutil"
)

// Sentinel errors for visual files.
var (
	ErrReadVisuals    = errors.New("failed to read visuals file")
	ErrParseVisuals   = errors.New("failed to parse visuals file")
	ErrNoVisuals      = errors.New("visuals file defines no visuals")
	ErrVisualNotFound = errors.New("visual not found")
	ErrDuplicateName  = errors.New("duplicate visual name")
)

// visualsFile is the YAML document the render and fonts commands read.
//
//	visuals:
//	  - name: march
//	    handle: alice
//	    period: last-month
//	    metrics:
//	      - {type: followers, value: 12345}
//	    premium: {template: bold, aspectRatio: landscape}
type visualsFile struct {
	Visuals []visualSpec `yaml:"visuals"`
}

type visualSpec struct {
	Name       string         `yaml:"name"` // output file name without extension
	Handle     string         `yaml:"handle"`
	Period     string         `yaml:"period"` // literal, "this-month", "last-month", "auto:FORMAT"
	Metrics    []metricSpec   `yaml:"metrics"`
	Background backgroundSpec `yaml:"background"`
	TextColor  string         `yaml:"textColor"`
	Premium    *premiumSpec   `yaml:"premium"`
}

type metricSpec struct {
	Type   string  `yaml:"type"`
	Value  float64 `yaml:"value"`
	Prefix string  `yaml:"prefix"`
}

type backgroundSpec struct {
	Preset string `yaml:"preset"`
	Color  string `yaml:"color"`
	Image  string `yaml:"image"`
}

type premiumSpec struct {
	Font         string   `yaml:"font"`
	AspectRatio  string   `yaml:"aspectRatio"`
	Template     string   `yaml:"template"`
	LogoPosition string   `yaml:"logoPosition"`
	Goal         *float64 `yaml:"goal"`
	Abbreviate   bool     `yaml:"abbreviate"`
}

// namedVisual is a visual document and the name its image is written under.
type namedVisual struct {
	Name string
	Doc  statcard.VisualDocument
}

// loadVisuals reads a visuals file. Periods are resolved against now, so
// every visual of a batch shares the same month.
func loadVisuals(path string, now time.Time) ([]namedVisual, error) {
	var file visualsFile
	if err := yamlutil.UnmarshalStrictFile(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %w", ErrReadVisuals, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrParseVisuals, path, err)
	}
	if len(file.Visuals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVisuals, path)
	}

	out := make([]namedVisual, 0, len(file.Visuals))
	seen := make(map[string]bool, len(file.Visuals))
	for i, spec := range file.Visuals {
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("visual-%d", i+1)
		}
		if err := assets.ValidateAssetName(name); err != nil {
			return nil, fmt.Errorf("%w: visuals[%d]: %v", ErrParseVisuals, i, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = true

		doc, err := spec.toDocument(now)
		if err != nil {
			return nil, fmt.Errorf("visual %q: %w", name, err)
		}
		out = append(out, namedVisual{Name: name, Doc: doc})
	}
	return out, nil
}

// toDocument converts the YAML form into a VisualDocument.
func (s visualSpec) toDocument(now time.Time) (statcard.VisualDocument, error) {
	period, err := dateutil.ResolvePeriod(s.Period, now)
	if err != nil {
		return statcard.VisualDocument{}, fmt.Errorf("%w: period: %v", ErrParseVisuals, err)
	}

	doc := statcard.VisualDocument{
		Handle: s.Handle,
		Period: period,
		Background: statcard.Background{
			Preset: s.Background.Preset,
			Color:  s.Background.Color,
			Image:  s.Background.Image,
		},
		TextColor: s.TextColor,
	}
	for _, m := range s.Metrics {
		doc.Metrics = append(doc.Metrics, statcard.Metric{Type: m.Type, Value: m.Value, Prefix: m.Prefix})
	}
	if p := s.Premium; p != nil {
		doc.Premium = &statcard.Premium{
			Font:         p.Font,
			AspectRatio:  p.AspectRatio,
			Template:     p.Template,
			LogoPosition: p.LogoPosition,
			Goal:         p.Goal,
			Abbreviate:   p.Abbreviate,
		}
	}
	return doc, nil
}

// selectVisuals keeps the visuals named in only, in file order.
// An empty only keeps everything.
func selectVisuals(all []namedVisual, only []string) ([]namedVisual, error) {
	if len(only) == 0 {
		return all, nil
	}

	byName := make(map[string]bool, len(all))
	for _, v := range all {
		byName[v.Name] = true
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		if !byName[name] {
			return nil, fmt.Errorf("%w: %q", ErrVisualNotFound, name)
		}
		wanted[name] = true
	}

	var out []namedVisual
	for _, v := range all {
		if wanted[v.Name] {
			out = append(out, v)
		}
	}
	return out, nil
}
