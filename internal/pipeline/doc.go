// Package pipeline assembles the standalone page handed to the capture engine.
//
// The page carries the document's stylesheets, an optional font embedding
// stylesheet, a sizing stylesheet pinning the layout viewport, and a filtered
// copy of the render root. The live document is never modified here: the
// root is cloned node by node while the node filter drops what must not be
// captured (scripts by default).
package pipeline
