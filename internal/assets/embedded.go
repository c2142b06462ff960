package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
// The name should not include the .css extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads a template set from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := path.Join("templates", name)
	layout, layoutErr := templates.ReadFile(path.Join(dir, LayoutFile))
	style, styleErr := templates.ReadFile(path.Join(dir, StyleFile))

	layoutMissing := errors.Is(layoutErr, fs.ErrNotExist)
	styleMissing := errors.Is(styleErr, fs.ErrNotExist)
	if layoutMissing && styleMissing {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if layoutMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, LayoutFile)
	}
	if styleMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, StyleFile)
	}
	if layoutErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, layoutErr)
	}
	if styleErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, styleErr)
	}

	return &TemplateSet{
		Name:   name,
		Layout: string(layout),
		Style:  string(style),
	}, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
