package dom

import (
	"strings"
	"testing"
)

func TestFindURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"double quoted", `url("a.png")`, []string{"a.png"}},
		{"single quoted", `url('a.png')`, []string{"a.png"}},
		{"bare", `url(a.png)`, []string{"a.png"}},
		{"padded", `url(  "a.png"  )`, []string{"a.png"}},
		{"upper case function", `URL(a.png)`, []string{"a.png"}},
		{"several layers", `url(a.png), linear-gradient(red, blue), url('b.jpg')`, []string{"a.png", "b.jpg"}},
		{"data uri", `url(data:image/png;base64,AAAA)`, []string{"data:image/png;base64,AAAA"}},
		{"none", `none`, nil},
		{"empty argument", `url("")`, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			refs := FindURLs(tt.value)
			if len(refs) != len(tt.want) {
				t.Fatalf("FindURLs(%q) returned %d refs, want %d", tt.value, len(refs), len(tt.want))
			}
			for i, ref := range refs {
				if ref.Target != tt.want[i] {
					t.Errorf("ref[%d].Target = %q, want %q", i, ref.Target, tt.want[i])
				}
				if !strings.HasPrefix(strings.ToLower(tt.value[ref.Start:ref.End]), "url(") {
					t.Errorf("ref[%d] offsets %d:%d do not cover a url() token", i, ref.Start, ref.End)
				}
			}
		})
	}
}

func TestReplaceURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		fn    func(string) (string, bool)
		want  string
	}{
		{
			name:  "replaces every reference",
			value: `url(a.png), url('b.png')`,
			fn:    func(s string) (string, bool) { return "X-" + s, true },
			want:  `url("X-a.png"), url("X-b.png")`,
		},
		{
			name:  "keeps declined references as written",
			value: `url('keep.png') no-repeat, url(swap.png)`,
			fn: func(s string) (string, bool) {
				if s == "keep.png" {
					return "", false
				}
				return "new.png", true
			},
			want: `url('keep.png') no-repeat, url("new.png")`,
		},
		{
			name:  "escapes quotes in replacement",
			value: `url(a)`,
			fn:    func(string) (string, bool) { return `b"c`, true },
			want:  `url("b\"c")`,
		},
		{
			name:  "no references",
			value: `red`,
			fn:    func(string) (string, bool) { return "unused", true },
			want:  `red`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ReplaceURLs(tt.value, tt.fn); got != tt.want {
				t.Errorf("ReplaceURLs(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"data:image/png;base64,AA==", true},
		{"DATA:font/woff2;base64,AA==", true},
		{"  data:,x", true},
		{"https://example.com/data:x", false},
		{"dat", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsDataURI(tt.input); got != tt.want {
			t.Errorf("IsDataURI(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "https://example.com/a.css", "https://example.com/page", true},
		{"explicit default port", "https://example.com:443/a.css", "https://example.com/", true},
		{"http default port", "http://example.com:80/a.css", "http://example.com/", true},
		{"host case", "https://EXAMPLE.com/a.css", "https://example.com/", true},
		{"different scheme", "http://example.com/a.css", "https://example.com/", false},
		{"different host", "https://cdn.example.com/a.css", "https://example.com/", false},
		{"different port", "https://example.com:8443/a.css", "https://example.com/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SameOrigin(mustURL(t, tt.a), mustURL(t, tt.b)); got != tt.want {
				t.Errorf("SameOrigin(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		if SameOrigin(nil, mustURL(t, "https://example.com/")) {
			t.Error("SameOrigin(nil, u) = true, want false")
		}
	})
}
