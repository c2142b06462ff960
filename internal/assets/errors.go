package assets

import "errors"

var (
	// ErrStyleNotFound: no styles/{name}.css in the embedded or custom assets.
	ErrStyleNotFound = errors.New("style not found")

	// ErrTemplateSetNotFound: no templates/{name}/ directory.
	ErrTemplateSetNotFound = errors.New("template set not found")

	// ErrIncompleteTemplateSet: a template directory lacks layout.html or style.css.
	ErrIncompleteTemplateSet = errors.New("template set missing required template")

	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid base path")
	ErrAssetRead        = errors.New("failed to read asset")

	// ErrPathTraversal: a symlink under the asset path points outside it.
	ErrPathTraversal = errors.New("path traversal detected")
)
