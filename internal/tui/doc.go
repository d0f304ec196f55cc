// Package tui draws a session on a terminal with tcell and turns key
// presses into session input.
//
// World coordinates are mapped to cells through a render.Viewport fitted
// to the level, so the terminal view and the quad renderer agree on
// layout. The bottom row is a status line.
package tui
