// Package level reads puzzle files into graph level data.
//
// Three source formats share one schema: TOML (the native format), YAML and
// CUE. CUE files are unified with an embedded schema first, so they may use
// comprehensions and defaults to generate nodes. Every format ends in the
// same validation path: names are parsed into shapes, glyphs and auras, and
// the graph is built with graph.Load. Any failure is reported as an *Error
// that matches graph.ErrInvalidLevel.
package level
