// Package window plays a session in a desktop window with ebiten.
//
// Each frame is laid out by render.Build and drawn with DrawTriangles,
// one call per atlas. The atlases are rasterised at start-up, so the
// window needs no asset files.
package window
