// Package graph is the sigil graph store.
//
// A Store owns every node (sigil) and line of a puzzle. Nodes and lines live
// in flat maps keyed by stable integer ids; lines reference their endpoints
// by id only, so there is no pointer graph to keep consistent.
//
// # Directions
//
// A line has a From and a To endpoint. Its direction is evaluated per
// endpoint: Exiting at From, Entering at To. Pentagon effects can flip the
// direction at one endpoint without touching the other, so every line keeps
// one flip flag per endpoint.
//
// # Transactions
//
// Rule effects touch many lines at once. Begin returns a Tx that works on a
// private copy of the store; Commit swaps the copy in, dropping the Tx leaves
// the store as it was. Callers never observe a half-applied effect.
//
// # Derived queries
//
// IsConnected, IsLooped and IsEnclosed are computed on demand from the
// current lines. Enclosure is only possible inside a closed loop, so
// IsEnclosed is built on the same cycle enumeration as Loops.
package graph
