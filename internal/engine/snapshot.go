package engine

import (
	"github.com/roach88/sigil/internal/canon"
	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/graph"
)

// NodeView is a node as presented to renderers, with derived topology.
type NodeView struct {
	ID         graph.NodeID `json:"id"`
	Shape      graph.Shape  `json:"shape"`
	Glyph      graph.Glyph  `json:"glyph"`
	RuneActive bool         `json:"rune_active"`
	Selected   bool         `json:"selected"`
	Position   graph.Point  `json:"position"`

	Connected bool `json:"connected"`
	Looped    bool `json:"looped"`
	Enclosed  bool `json:"enclosed"`
	Satisfied bool `json:"satisfied"`
}

// LineView is a line as presented to renderers. Directions are reported
// only when an endpoint is a directional shape.
type LineView struct {
	ID   graph.LineID `json:"id"`
	From graph.NodeID `json:"from"`
	To   graph.NodeID `json:"to"`

	Directed      bool   `json:"directed"`
	FromDirection string `json:"from_direction,omitempty"`
	ToDirection   string `json:"to_direction,omitempty"`
}

// Snapshot is the full observable state after a step. Nodes and lines are
// ordered by id.
type Snapshot struct {
	Seq    int64         `json:"seq"`
	Cursor cursor.Cursor `json:"cursor"`
	Nodes  []NodeView    `json:"nodes"`
	Lines  []LineView    `json:"lines"`
	Solved bool          `json:"solved"`
}

// Node returns the view of node id.
func (s Snapshot) Node(id graph.NodeID) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

func buildSnapshot(st *graph.Store, cur cursor.Cursor, seq int64) Snapshot {
	snap := Snapshot{
		Seq:    seq,
		Cursor: cur,
		Nodes:  []NodeView{},
		Lines:  []LineView{},
	}
	shapes := make(map[graph.NodeID]graph.Shape)
	for _, n := range st.Nodes() {
		shapes[n.ID] = n.Shape
		snap.Nodes = append(snap.Nodes, NodeView{
			ID:         n.ID,
			Shape:      n.Shape,
			Glyph:      n.Glyph,
			RuneActive: n.RuneActive,
			Selected:   n.Selected,
			Position:   n.Position,
			Connected:  st.IsConnected(n.ID),
			Looped:     st.IsLooped(n.ID),
			Enclosed:   st.IsEnclosed(n.ID),
			Satisfied:  st.Satisfied(n.ID),
		})
	}
	for _, l := range st.Lines() {
		v := LineView{ID: l.ID, From: l.From, To: l.To}
		if shapes[l.From].Directional() || shapes[l.To].Directional() {
			v.Directed = true
			from, _ := l.DirectionAt(l.From)
			to, _ := l.DirectionAt(l.To)
			v.FromDirection = from.String()
			v.ToDirection = to.String()
		}
		snap.Lines = append(snap.Lines, v)
	}
	snap.Solved = solved(snap.Nodes)
	return snap
}

// solved holds when at least one rune is active and every active rune's
// glyph condition is met.
func solved(nodes []NodeView) bool {
	active := 0
	for _, n := range nodes {
		if !n.RuneActive {
			continue
		}
		active++
		if !n.Satisfied {
			return false
		}
	}
	return active > 0
}

// Hash returns the canonical content hash of the snapshot. Seq is not part
// of it, so equal states hash equally wherever they occur in a session.
// Coordinates are quantised with canon.Fixed.
func (s Snapshot) Hash() (string, error) {
	nodes := make(canon.Array, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, canon.Object{
			"id":        canon.Int(n.ID),
			"shape":     canon.String(n.Shape.String()),
			"glyph":     canon.String(n.Glyph.String()),
			"rune":      canon.Bool(n.RuneActive),
			"selected":  canon.Bool(n.Selected),
			"x":         canon.Fixed(n.Position.X),
			"y":         canon.Fixed(n.Position.Y),
			"connected": canon.Bool(n.Connected),
			"looped":    canon.Bool(n.Looped),
			"enclosed":  canon.Bool(n.Enclosed),
		})
	}
	lines := make(canon.Array, 0, len(s.Lines))
	for _, l := range s.Lines {
		obj := canon.Object{
			"id":   canon.Int(l.ID),
			"from": canon.Int(l.From),
			"to":   canon.Int(l.To),
		}
		if l.Directed {
			obj["from_direction"] = canon.String(l.FromDirection)
			obj["to_direction"] = canon.String(l.ToDirection)
		}
		lines = append(lines, obj)
	}
	return canon.Hash(canon.DomainSnapshot, canon.Object{
		"cursor": canon.Object{
			"aura": canon.String(s.Cursor.Aura.String()),
			"x":    canon.Fixed(s.Cursor.Position.X),
			"y":    canon.Fixed(s.Cursor.Position.Y),
		},
		"nodes":  nodes,
		"lines":  lines,
		"solved": canon.Bool(s.Solved),
	})
}
