package dom

import (
	"testing"

	nodes "github.com/go-shiori/dom"
)

func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Declaration
	}{
		{
			name: "empty",
			text: "  ",
			want: nil,
		},
		{
			name: "normal and important",
			text: "Color: red; background-image: url(a.png) !important",
			want: []Declaration{
				{Property: "color", Value: "red"},
				{Property: "background-image", Value: "url(a.png)", Important: true},
			},
		},
		{
			name: "trailing semicolon",
			text: "margin: 0;",
			want: []Declaration{{Property: "margin", Value: "0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseDeclarations(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseDeclarations(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("decl[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatDeclarations(t *testing.T) {
	t.Parallel()

	got := FormatDeclarations([]Declaration{
		{Property: "color", Value: "red"},
		{Property: "background-image", Value: "none", Important: true},
	})
	want := "color: red; background-image: none !important"
	if got != want {
		t.Errorf("FormatDeclarations() = %q, want %q", got, want)
	}
}

func TestInlineProperty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		style     string
		wantValue string
		wantOK    bool
	}{
		{"absent", "color: red", "", false},
		{"last wins", "background-image: url(a); background-image: url(b)", "url(b)", true},
		{"important wins over later", "background-image: url(a) !important; background-image: url(b)", "url(a)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := nodes.CreateElement("div")
			nodes.SetAttribute(n, "style", tt.style)

			got, ok := InlineProperty(n, "background-image")
			if ok != tt.wantOK || got.Value != tt.wantValue {
				t.Errorf("InlineProperty() = (%q, %v), want (%q, %v)", got.Value, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestSetInlineProperty(t *testing.T) {
	t.Parallel()

	n := nodes.CreateElement("div")
	nodes.SetAttribute(n, "style", "color: red; background-image: url(a); background-image: url(b)")

	SetInlineProperty(n, "background-image", `url("data:x")`, true)

	want := `color: red; background-image: url("data:x") !important`
	if got := nodes.GetAttribute(n, "style"); got != want {
		t.Errorf("style = %q, want %q", got, want)
	}
}

func TestAttrSnapshot_Restore(t *testing.T) {
	t.Parallel()

	t.Run("restores previous value", func(t *testing.T) {
		t.Parallel()

		n := nodes.CreateElement("div")
		nodes.SetAttribute(n, "style", "color:red")
		snap := SnapshotAttr(n, "style")

		nodes.SetAttribute(n, "style", "color:blue")
		snap.Restore()

		if got := nodes.GetAttribute(n, "style"); got != "color:red" {
			t.Errorf("style = %q, want %q", got, "color:red")
		}
	})

	t.Run("removes attribute that was absent", func(t *testing.T) {
		t.Parallel()

		n := nodes.CreateElement("div")
		snap := SnapshotAttr(n, "style")

		nodes.SetAttribute(n, "style", "color:blue")
		snap.Restore()

		if nodes.HasAttribute(n, "style") {
			t.Errorf("style attribute should be removed, got %q", nodes.GetAttribute(n, "style"))
		}
	})

	t.Run("keeps empty attribute", func(t *testing.T) {
		t.Parallel()

		n := nodes.CreateElement("div")
		nodes.SetAttribute(n, "style", "")
		snap := SnapshotAttr(n, "style")

		nodes.SetAttribute(n, "style", "color:blue")
		snap.Restore()

		if !nodes.HasAttribute(n, "style") || nodes.GetAttribute(n, "style") != "" {
			t.Errorf("empty style attribute not restored")
		}
	})

	t.Run("zero value is a no-op", func(t *testing.T) {
		t.Parallel()

		var snap AttrSnapshot
		snap.Restore()
	})
}
