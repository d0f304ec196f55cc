// Package harness runs puzzle scenarios against the interaction engine.
//
// A scenario loads one level, drives a session through a list of steps and
// checks the outcome of each step as well as the final board.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: severance
//	description: "Triangle aura destroys the square and frees the phi rune"
//	level: ../levels/severance.toml
//	config:
//	  max_collisions: 16
//	steps:
//	  - move: [0, 2]
//	    expect:
//	      hits: 1
//	      effects: {destroy: 1, disconnect: 1}
//	  - aura: circle
//	  - select: {node: 1, on: true}
//	  - undo: true
//	    expect: {undone: true}
//	assertions:
//	  - type: solved
//	    value: true
//	  - type: node
//	    node: 1
//	    expect: {rune: true, satisfied: true}
//
// The level path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - solved: the board is (or is not) solved
//   - node_count, line_count: number of nodes or lines on the board
//   - node: subset match on one node's state
//   - line: subset match on one line's endpoints and directions
//   - cursor: subset match on the cursor
//   - effect_count: how many effects of one kind the whole run produced
//
// # Deterministic Testing
//
// Every run uses a fixed session id and a fresh in-memory journal. After
// the last step the journal is replayed and every snapshot hash is checked,
// so a scenario also proves its own determinism. The trace of a run has a
// stable text form (Format) used for golden file comparison.
package harness
