// Package render turns a session snapshot into textured quads.
//
// The output is backend-neutral: every quad carries clip-space positions,
// a per-vertex colour and texture coordinates into one of two atlases.
// The orb atlas holds one row per shape with an inactive and an active
// column. The glyph atlas holds the four rune glyphs side by side. Lines
// use a repeating strip texture whose u coordinate scrolls with time.
//
// Any pipeline that can draw indexed triangles from (position, uv, colour)
// vertices can consume a Frame.
package render
