package statcard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-statcard/internal/assets"
)

// Store persists exported images and returns a fetchable URL.
// Implementations may write to disk, object storage, a CDN, etc.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore writes images to a local directory.
type FileStore struct {
	dir       string
	publicURL *url.URL
}

// NewFileStore creates a FileStore writing under dir. The directory is
// created if missing. publicURL is the URL dir is served from; when empty
// Put returns file:// URLs.
func NewFileStore(dir, publicURL string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving store directory: %w", err)
	}
	// #nosec G301 -- stored images are meant to be served
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &FileStore{dir: abs}
	if publicURL != "" {
		u, err := url.Parse(publicURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("public URL %q must be an absolute URL", publicURL)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		s.publicURL = u
	}
	return s, nil
}

// Put writes data to dir/name and returns its URL.
// The name must be a plain file name.
func (s *FileStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if err := assets.ValidateAssetName(base); err != nil || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	path := filepath.Join(s.dir, name)
	// #nosec G306 -- stored images are meant to be served
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	if s.publicURL == nil {
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
	}
	return s.publicURL.ResolveReference(&url.URL{Path: name}).String(), nil
}
