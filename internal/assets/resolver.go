package assets

import "errors"

// AssetResolver serves background styles and visual template sets from a
// custom directory, falling back to the embedded ones for anything the
// directory does not define. A directory holding only templates/bold/ thus
// overrides the bold layout while classic, minimal and the background
// presets stay built in.
type AssetResolver struct {
	custom   AssetLoader // nil without an asset path
	embedded AssetLoader
}

// NewAssetResolver returns a resolver over the embedded assets, layered under
// customBasePath when it is set. An unusable customBasePath is an error.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}

	fsLoader, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = fsLoader
	return r, nil
}

// LoadStyle loads a shared stylesheet such as base or backgrounds.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return withFallback(r, func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplateSet loads the layout and stylesheet of a visual template.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return withFallback(r, func(l AssetLoader) (*TemplateSet, error) {
		return l.LoadTemplateSet(name)
	})
}

// HasCustomLoader reports whether an asset path is layered over the embedded assets.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// withFallback tries the custom directory, then the embedded assets.
// Only a missing asset falls through; invalid names and read errors from the
// custom directory are returned as is.
func withFallback[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}
	v, err := load(r.custom)
	if err == nil || !isNotFoundError(err) {
		return v, err
	}
	return load(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateSetNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
