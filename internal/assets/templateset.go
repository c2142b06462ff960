package assets

// TemplateSet holds the files of one visual template.
type TemplateSet struct {
	Name   string // Identifier (name or directory path)
	Layout string // html/template markup of the visual root
	Style  string // template-specific CSS
}

// Template set file names.
const (
	LayoutFile = "layout.html"
	StyleFile  = "style.css"
)

// Built-in names.
const (
	// DefaultTemplateSetName is the template used when none is selected.
	DefaultTemplateSetName = "classic"

	// BaseStyleName holds rules shared by every template.
	BaseStyleName = "base"

	// BackgroundsStyleName holds the background presets.
	BackgroundsStyleName = "backgrounds"
)
