package assets

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("valid custom path", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !resolver.HasCustomLoader() {
			t.Error("expected custom loader for valid path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_LoadStyle(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "styles/brand.css", "/* brand */")
	writeAsset(t, tmpDir, "styles/backgrounds.css", "/* custom backgrounds */")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	tests := []struct {
		name      string
		styleName string
		want      string
		wantErr   error
	}{
		{
			name:      "custom only style",
			styleName: "brand",
			want:      "/* brand */",
		},
		{
			name:      "custom overrides embedded",
			styleName: BackgroundsStyleName,
			want:      "/* custom backgrounds */",
		},
		{
			name:      "falls back to embedded",
			styleName: BaseStyleName,
		},
		{
			name:      "missing everywhere",
			styleName: "nonexistent-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "validation errors are not fallen back",
			styleName: "../base",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolver.LoadStyle(tt.styleName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("LoadStyle(%q) = %q, want %q", tt.styleName, got, tt.want)
			}
			if got == "" {
				t.Errorf("LoadStyle(%q) returned empty content", tt.styleName)
			}
		})
	}
}

func TestAssetResolver_LoadTemplateSet(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "templates/classic/layout.html", `<div id="visual">custom</div>`)
	writeAsset(t, tmpDir, "templates/classic/style.css", "/* custom classic */")
	writeAsset(t, tmpDir, "templates/broken/layout.html", `<div id="visual"></div>`)

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		ts, err := resolver.LoadTemplateSet("classic")
		if err != nil {
			t.Fatalf("LoadTemplateSet() error = %v", err)
		}
		if ts.Style != "/* custom classic */" {
			t.Errorf("Style = %q, want custom style", ts.Style)
		}
	})

	t.Run("falls back to embedded", func(t *testing.T) {
		t.Parallel()

		ts, err := resolver.LoadTemplateSet("bold")
		if err != nil {
			t.Fatalf("LoadTemplateSet() error = %v", err)
		}
		if ts.Layout == "" {
			t.Error("LoadTemplateSet() returned empty layout from fallback")
		}
	})

	t.Run("incomplete custom set is not fallen back", func(t *testing.T) {
		t.Parallel()

		_, err := resolver.LoadTemplateSet("broken")
		if !errors.Is(err, ErrIncompleteTemplateSet) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrIncompleteTemplateSet", err)
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()

		_, err := resolver.LoadTemplateSet("nonexistent-xyz")
		if !errors.Is(err, ErrTemplateSetNotFound) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrTemplateSetNotFound", err)
		}
	})
}

func TestAssetResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	resolver, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	if _, err := resolver.LoadStyle(BaseStyleName); err != nil {
		t.Errorf("LoadStyle() error = %v", err)
	}
	if _, err := resolver.LoadTemplateSet(DefaultTemplateSetName); err != nil {
		t.Errorf("LoadTemplateSet() error = %v", err)
	}
}

func TestAssetResolver_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*AssetResolver)(nil)
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"style not found", ErrStyleNotFound, true},
		{"template set not found", ErrTemplateSetNotFound, true},
		{"wrapped not found", fmt.Errorf("%w: %q", ErrStyleNotFound, "x"), true},
		{"incomplete set", ErrIncompleteTemplateSet, false},
		{"invalid name", ErrInvalidAssetName, false},
		{"read error", ErrAssetRead, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isNotFoundError(tt.err); got != tt.want {
				t.Errorf("isNotFoundError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
