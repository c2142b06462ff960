// Package fetch retrieves external resources and encodes them as data URIs.
//
// Both the background inliner and the font collector go through a Fetcher, so
// tests can substitute canned responses and production code gets a single
// place for timeouts and size limits.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for fetch operations.
var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
	ErrTooLarge          = errors.New("resource exceeds size limit")
	ErrInvalidDataURL    = errors.New("invalid data URL")
)

// Default limits for HTTPFetcher.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 20 << 20 // 20MB, large background photos included
)

// Resource is a fetched resource.
type Resource struct {
	URL         string
	ContentType string // media type without parameters, may be empty
	Body        []byte
}

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Resource, error)
}

// Compile-time interface check.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches http(s) URLs with net/http and file URLs from disk.
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient replaces the HTTP client. Its timeout is left untouched.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithMaxBytes caps the size of a single resource.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header of outgoing requests.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates a fetcher whose requests each time out after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewHTTPFetcher(timeout time.Duration, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "file":
		return f.fetchFile(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, u *url.URL) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, u, resp.StatusCode)
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}

	return &Resource{
		URL:         u.String(),
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Body:        body,
	}, nil
}

func (f *HTTPFetcher) fetchFile(ctx context.Context, u *url.URL) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.FromSlash(u.Path)
	file, err := os.Open(path) // #nosec G304 -- file URLs come from the document base
	if err != nil {
		return nil, err
	}
	defer file.Close()

	body, err := f.readLimited(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Resource{
		URL:         u.String(),
		ContentType: mediaType(mime.TypeByExtension(filepath.Ext(path))),
		Body:        body,
	}, nil
}

// readLimited reads at most maxBytes, failing with ErrTooLarge beyond that.
func (f *HTTPFetcher) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return body, nil
}

// mediaType strips parameters from a Content-Type value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
