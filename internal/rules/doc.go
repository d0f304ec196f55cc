// Package rules resolves cursor collisions against the sigil graph.
//
// A collision names the cursor aura, the crossed line and the affected node.
// Resolution runs in two phases inside one graph transaction:
//
//  1. Shape: the node's shape decides whether the crossing is allowed and
//     applies its structural effect (Triangle rejects entering crossings,
//     Pentagon flips entering lines, Hexagon fans an exiting line out to
//     its entrants).
//  2. Aura: the cursor's aura acts on the node in the post-shape graph
//     (Circle clones, Triangle destroys, Square toggles the rune).
//
// After both phases every Triangle node is swept of entering lines. Either
// the whole outcome is committed or, on error, nothing is.
package rules
