package graph

// NodeSpec describes one sigil in level data.
type NodeSpec struct {
	ID         NodeID
	Shape      Shape
	Glyph      Glyph
	Position   Point
	RuneActive bool
}

// LineSpec describes one line in level data.
type LineSpec struct {
	ID   LineID
	From NodeID
	To   NodeID
}

// LevelData is the bulk-load form of a puzzle graph.
type LevelData struct {
	Nodes []NodeSpec
	Lines []LineSpec
}

// Load builds a store from level data. Any malformed entry rejects the whole
// level with an INVALID_LEVEL error; no partial store is returned.
//
// Rejected: non-positive or duplicate ids, invalid shapes, lines naming
// unknown nodes, lines whose endpoints coincide, and duplicate ordered
// pairs. Lines entering a Triangle are allowed; the first collision clears
// them.
func Load(data LevelData) (*Store, error) {
	s := New()

	for i, spec := range data.Nodes {
		if spec.ID <= 0 {
			return nil, invalidLevel("nodes[%d]: id must be positive, got %d", i, spec.ID)
		}
		if !spec.Shape.Valid() {
			return nil, invalidLevel("nodes[%d]: invalid shape %d", i, int(spec.Shape))
		}
		if _, dup := s.nodes[spec.ID]; dup {
			return nil, invalidLevel("nodes[%d]: duplicate node id %d", i, spec.ID)
		}
		if _, err := s.AddNode(Node{
			ID:         spec.ID,
			Shape:      spec.Shape,
			Glyph:      spec.Glyph,
			Position:   spec.Position,
			RuneActive: spec.RuneActive,
		}); err != nil {
			return nil, &Error{Code: CodeInvalidLevel, Message: "nodes", Err: err}
		}
	}

	for i, spec := range data.Lines {
		if spec.ID <= 0 {
			return nil, invalidLevel("lines[%d]: id must be positive, got %d", i, spec.ID)
		}
		if _, dup := s.lines[spec.ID]; dup {
			return nil, invalidLevel("lines[%d]: duplicate line id %d", i, spec.ID)
		}
		if _, ok := s.nodes[spec.From]; !ok {
			return nil, invalidLevel("lines[%d]: unknown node %d", i, spec.From)
		}
		if _, ok := s.nodes[spec.To]; !ok {
			return nil, invalidLevel("lines[%d]: unknown node %d", i, spec.To)
		}
		if spec.From == spec.To {
			return nil, invalidLevel("lines[%d]: line %d joins node %d to itself", i, spec.ID, spec.From)
		}
		if _, dup := s.findLine(spec.From, spec.To); dup {
			return nil, invalidLevel("lines[%d]: duplicate line %d -> %d", i, spec.From, spec.To)
		}
		s.lines[spec.ID] = Line{ID: spec.ID, From: spec.From, To: spec.To}
		if spec.ID >= s.nextLine {
			s.nextLine = spec.ID + 1
		}
	}

	return s, nil
}

// LevelData exports the store in bulk-load form. Flip flags are not part of
// level data; a store with flipped lines does not round-trip.
func (s *Store) LevelData() LevelData {
	var data LevelData
	for _, n := range s.Nodes() {
		data.Nodes = append(data.Nodes, NodeSpec{
			ID:         n.ID,
			Shape:      n.Shape,
			Glyph:      n.Glyph,
			Position:   n.Position,
			RuneActive: n.RuneActive,
		})
	}
	for _, l := range s.Lines() {
		data.Lines = append(data.Lines, LineSpec{ID: l.ID, From: l.From, To: l.To})
	}
	return data
}
