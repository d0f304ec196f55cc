// Package cursor moves the player's cursor across the sigil graph.
//
// A movement step is a straight segment from the cursor's position to
// position+delta. Line crossings along it are resolved one at a time,
// nearest first, through the rule engine; after each resolution the
// remaining crossings are recomputed against the mutated graph. A step is
// all-or-nothing: if any collision fails, graph and cursor are restored to
// where they were before the step.
package cursor
