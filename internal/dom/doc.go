// Package dom holds the owned document model shared by the export stages.
//
// A Document is a golang.org/x/net/html tree plus the information a browser
// would attach to it: the base URL used to resolve relative references and
// the stylesheets registered programmatically (the CSSOM-only sources that
// have no textual node in the tree).
//
// The package also provides the small CSS toolkit the stages need:
//   - url() reference extraction and rewriting in CSS values
//   - inline style attribute editing (one declaration at a time)
//   - a computed-style cascade over <style> rules, registered sheets and
//     inline declarations (douceur for parsing, cascadia for matching)
//   - origin comparison for same-origin stylesheet access
package dom
