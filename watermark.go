package statcard

import (
	"fmt"
	"strings"

	nodes "github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// watermarkAttr marks the injected watermark element.
const watermarkAttr = "data-statcard-watermark"

// Watermark appearance, in CSS pixels of the layout viewport.
const (
	watermarkFontSize = 14
	watermarkOpacity  = 0.55
	watermarkInset    = 12
)

// watermarkStyle positions the watermark in the bottom-right corner of root.
func watermarkStyle() string {
	return fmt.Sprintf(
		"position: absolute; right: %dpx; bottom: %dpx; z-index: 2147483647; "+
			"font: 600 %dpx/1 sans-serif; color: #ffffff; opacity: %.2f; "+
			"text-shadow: 0 1px 2px rgba(0,0,0,.45); pointer-events: none; white-space: nowrap",
		watermarkInset, watermarkInset, watermarkFontSize, watermarkOpacity)
}

// injectWatermark appends a watermark element to root and returns a function
// that removes it again. The remover is safe to call more than once.
func injectWatermark(root *html.Node, text string) func() {
	text = strings.TrimSpace(text)
	if root == nil || text == "" {
		return func() {}
	}

	mark := nodes.CreateElement("div")
	nodes.SetAttribute(mark, watermarkAttr, "")
	nodes.SetAttribute(mark, "aria-hidden", "true")
	nodes.SetAttribute(mark, "style", watermarkStyle())
	nodes.SetTextContent(mark, breakURLPattern(text))
	root.AppendChild(mark)

	return func() {
		if mark.Parent != nil {
			mark.Parent.RemoveChild(mark)
		}
	}
}

// breakURLPattern replaces every dot with ONE DOT LEADER (U+2024) so a domain
// in the watermark is not turned into a link by image viewers.
func breakURLPattern(text string) string {
	return strings.ReplaceAll(text, ".", "\u2024")
}
