// Package engine runs a play session over one puzzle level.
//
// A Session owns the graph store, the rule engine and the cursor
// controller for a level and is the only entry point for input: cursor
// moves, aura changes, selection and undo. Each accepted input is one step.
// Steps are resolved to completion before the next one is accepted, so the
// state seen between calls is always settled.
//
// Every step is stamped with a sequence number from a logical clock and,
// when a journal is attached, appended to it together with the canonical
// hash of the resulting snapshot. Replay feeds a journaled session's steps
// into a fresh session and checks that every hash matches.
//
// A Session is not safe for concurrent use.
package engine
