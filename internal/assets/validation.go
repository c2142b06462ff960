package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks a style, template, visual or stored image name.
// Names become single path elements (templates/{name}/, {name}.jpg), so
// they must be non-empty and free of separators and dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q must not contain '/', '\\' or '.'", ErrInvalidAssetName, name)
	}
	return nil
}
