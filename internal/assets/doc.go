// Package assets provides the stylesheets and layout templates visuals are
// rendered from. Assets can be loaded from embedded files or a custom directory.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in templates)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the exporter when an asset path is
// configured. It tries the custom directory first and falls back to the
// embedded assets when a file is not found, so a single template can be
// overridden while the rest stay built in.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── base.css             # rules shared by every template
//	│   └── backgrounds.css      # background presets, one .bg-{id} class each
//	└── templates/
//	    └── {name}/
//	        ├── layout.html      # html/template markup of the visual root
//	        └── style.css        # template-specific rules
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
