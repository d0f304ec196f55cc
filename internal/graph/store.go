package graph

import (
	"maps"
	"slices"
)

// DefaultLoopBudget caps how many simple cycles Loops and IsEnclosed will
// enumerate. Puzzle graphs are small; the cap only guards pathological input.
const DefaultLoopBudget = 4096

// Store owns the nodes and lines of one puzzle.
//
// Store is not safe for concurrent use. The engine owns it exclusively.
type Store struct {
	nodes map[NodeID]Node
	lines map[LineID]Line

	nextNode NodeID
	nextLine LineID

	loopBudget int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nodes:      make(map[NodeID]Node),
		lines:      make(map[LineID]Line),
		nextNode:   1,
		nextLine:   1,
		loopBudget: DefaultLoopBudget,
	}
}

// SetLoopBudget changes the cycle enumeration cap. Values < 1 restore the default.
func (s *Store) SetLoopBudget(n int) {
	if n < 1 {
		n = DefaultLoopBudget
	}
	s.loopBudget = n
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	return &Store{
		nodes:      maps.Clone(s.nodes),
		lines:      maps.Clone(s.lines),
		nextNode:   s.nextNode,
		nextLine:   s.nextLine,
		loopBudget: s.loopBudget,
	}
}

// AddNode inserts a node. A zero ID is replaced by a fresh one; an explicit
// ID must not be in use. The stored ID is returned.
func (s *Store) AddNode(n Node) (NodeID, error) {
	if !n.Shape.Valid() {
		return 0, invalidNode(n.ID, "invalid shape %d", int(n.Shape))
	}
	if n.ID == 0 {
		n.ID = s.nextNode
	}
	if n.ID < 0 {
		return 0, invalidNode(n.ID, "node ids must be positive")
	}
	if _, exists := s.nodes[n.ID]; exists {
		return 0, invalidNode(n.ID, "node already exists")
	}
	s.nodes[n.ID] = n
	if n.ID >= s.nextNode {
		s.nextNode = n.ID + 1
	}
	return n.ID, nil
}

// Node returns the node with the given id.
func (s *Store) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Line returns the line with the given id.
func (s *Store) Line(id LineID) (Line, bool) {
	l, ok := s.lines[id]
	return l, ok
}

// Nodes returns all nodes ordered by id.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, id := range slices.Sorted(maps.Keys(s.nodes)) {
		out = append(out, s.nodes[id])
	}
	return out
}

// Lines returns all lines ordered by id.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, id := range slices.Sorted(maps.Keys(s.lines)) {
		out = append(out, s.lines[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// LineCount returns the number of lines.
func (s *Store) LineCount() int { return len(s.lines) }

// Connect creates a line from a to b.
func (s *Store) Connect(a, b NodeID) (LineID, error) {
	if err := s.checkEndpoints(a, b); err != nil {
		return 0, err
	}
	if dup, ok := s.findLine(a, b); ok {
		return 0, &Error{
			Code:    CodeDuplicateLine,
			Line:    dup,
			Message: "line between these endpoints already exists",
		}
	}
	id := s.nextLine
	s.nextLine++
	s.lines[id] = Line{ID: id, From: a, To: b}
	return id, nil
}

// Disconnect removes a line. Removing an absent line fails.
func (s *Store) Disconnect(id LineID) error {
	if _, ok := s.lines[id]; !ok {
		return unknownLine(id)
	}
	delete(s.lines, id)
	return nil
}

// Reconnect repoints the To endpoint of a line, keeping its id.
func (s *Store) Reconnect(id LineID, newTo NodeID) error {
	l, ok := s.lines[id]
	if !ok {
		return unknownLine(id)
	}
	return s.ReconnectEndpoint(id, l.To, newTo)
}

// ReconnectEndpoint moves the endpoint of line id that is currently at
// node `at` onto node `to`. The line keeps its id; the moved endpoint loses
// any flip it carried.
func (s *Store) ReconnectEndpoint(id LineID, at, to NodeID) error {
	l, ok := s.lines[id]
	if !ok {
		return unknownLine(id)
	}
	if !l.Has(at) {
		return &Error{Code: CodeInvalidNode, Node: at, Line: id, Message: "node is not an endpoint of line"}
	}
	next := l
	if l.From == at {
		next.From = to
		next.FromFlipped = false
	} else {
		next.To = to
		next.ToFlipped = false
	}
	if err := s.checkEndpoints(next.From, next.To); err != nil {
		return err
	}
	if dup, ok := s.findLine(next.From, next.To); ok && dup != id {
		return &Error{
			Code:    CodeDuplicateLine,
			Line:    dup,
			Message: "line between these endpoints already exists",
		}
	}
	s.lines[id] = next
	return nil
}

// SetDirection forces the direction of line id at endpoint `at`.
func (s *Store) SetDirection(id LineID, at NodeID, dir Direction) error {
	l, ok := s.lines[id]
	if !ok {
		return unknownLine(id)
	}
	current, ok := l.DirectionAt(at)
	if !ok {
		return &Error{Code: CodeInvalidNode, Node: at, Line: id, Message: "node is not an endpoint of line"}
	}
	if current == dir {
		return nil
	}
	if l.From == at {
		l.FromFlipped = !l.FromFlipped
	} else {
		l.ToFlipped = !l.ToFlipped
	}
	s.lines[id] = l
	return nil
}

// DestroyNode removes a node and every line incident to it. The removed
// line ids are returned in ascending order.
func (s *Store) DestroyNode(id NodeID) ([]LineID, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, invalidNode(id, "node does not exist")
	}
	var removed []LineID
	for _, l := range s.Incident(id) {
		delete(s.lines, l.ID)
		removed = append(removed, l.ID)
	}
	delete(s.nodes, id)
	return removed, nil
}

// Toggle flips the rune bit of a node and returns the new value.
func (s *Store) Toggle(id NodeID) (bool, error) {
	n, ok := s.nodes[id]
	if !ok {
		return false, invalidNode(id, "node does not exist")
	}
	n.RuneActive = !n.RuneActive
	s.nodes[id] = n
	return n.RuneActive, nil
}

// SetSelected records the external selection flag of a node.
func (s *Store) SetSelected(id NodeID, selected bool) error {
	n, ok := s.nodes[id]
	if !ok {
		return invalidNode(id, "node does not exist")
	}
	n.Selected = selected
	s.nodes[id] = n
	return nil
}

// Incident returns the lines touching node id, ordered by line id.
func (s *Store) Incident(id NodeID) []Line {
	var out []Line
	for _, l := range s.Lines() {
		if l.Has(id) {
			out = append(out, l)
		}
	}
	return out
}

// Entering returns the lines whose direction at node id is Entering.
func (s *Store) Entering(id NodeID) []Line {
	return s.withDirection(id, Entering)
}

// Exiting returns the lines whose direction at node id is Exiting.
func (s *Store) Exiting(id NodeID) []Line {
	return s.withDirection(id, Exiting)
}

func (s *Store) withDirection(id NodeID, want Direction) []Line {
	var out []Line
	for _, l := range s.Incident(id) {
		if dir, _ := l.DirectionAt(id); dir == want {
			out = append(out, l)
		}
	}
	return out
}

// FindLine returns the id of the line from a to b, if any.
func (s *Store) FindLine(a, b NodeID) (LineID, bool) {
	return s.findLine(a, b)
}

func (s *Store) findLine(a, b NodeID) (LineID, bool) {
	for id, l := range s.lines {
		if l.From == a && l.To == b {
			return id, true
		}
	}
	return 0, false
}

func (s *Store) checkEndpoints(a, b NodeID) error {
	if _, ok := s.nodes[a]; !ok {
		return invalidNode(a, "node does not exist")
	}
	if _, ok := s.nodes[b]; !ok {
		return invalidNode(b, "node does not exist")
	}
	if a == b {
		return invalidNode(a, "line endpoints must differ")
	}
	return nil
}
