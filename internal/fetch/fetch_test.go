package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/bg.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/font.woff2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "font/woff2; charset=binary")
		_, _ = w.Write([]byte("wOF2"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	})
	mux.HandleFunc("/ua", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.UserAgent()))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := []struct {
		name     string
		path     string
		opts     []Option
		wantType string
		wantBody string
		wantErr  error
	}{
		{
			name:     "image",
			path:     "/bg.png",
			wantType: "image/png",
			wantBody: string(pngHeader),
		},
		{
			name:     "content type parameters stripped",
			path:     "/font.woff2",
			wantType: "font/woff2",
			wantBody: "wOF2",
		},
		{
			name:    "non-2xx status",
			path:    "/missing",
			wantErr: ErrHTTPStatus,
		},
		{
			name:    "size limit",
			path:    "/big",
			opts:    []Option{WithMaxBytes(16)},
			wantErr: ErrTooLarge,
		},
		{
			name:     "user agent",
			path:     "/ua",
			opts:     []Option{WithUserAgent("statcard-test")},
			wantBody: "statcard-test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewHTTPFetcher(5*time.Second, tt.opts...)
			res, err := f.Fetch(context.Background(), srv.URL+tt.path)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if tt.wantType != "" && res.ContentType != tt.wantType {
				t.Errorf("ContentType = %q, want %q", res.ContentType, tt.wantType)
			}
			if string(res.Body) != tt.wantBody {
				t.Errorf("Body = %q, want %q", res.Body, tt.wantBody)
			}
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	f := NewHTTPFetcher(50 * time.Millisecond)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() expected timeout error")
	}
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(0).Fetch(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestHTTPFetcher_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	res, err := NewHTTPFetcher(0).Fetch(context.Background(), u.String())
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if res.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", res.ContentType)
	}

	missing := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dir, "nope.png"))}
	if _, err := NewHTTPFetcher(0).Fetch(context.Background(), missing.String()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Fetch(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestHTTPFetcher_UnsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPFetcher(0).Fetch(context.Background(), "ftp://example.com/a.png")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Fetch() error = %v, want ErrUnsupportedScheme", err)
	}
}
