package level

import (
	"fmt"

	"github.com/roach88/sigil/internal/canon"
	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/rules"
)

// Level is a parsed puzzle: the initial graph plus the cursor start.
type Level struct {
	Name   string
	Cursor cursor.Cursor
	Graph  graph.LevelData
}

// File is the on-disk schema shared by every format.
type File struct {
	Name   string     `toml:"name" yaml:"name" json:"name"`
	Cursor FileCursor `toml:"cursor" yaml:"cursor" json:"cursor"`
	Nodes  []FileNode `toml:"nodes" yaml:"nodes" json:"nodes"`
	Lines  []FileLine `toml:"lines,omitempty" yaml:"lines,omitempty" json:"lines,omitempty"`
}

// FileCursor is the cursor start. An empty aura means circle.
type FileCursor struct {
	X    float64 `toml:"x" yaml:"x" json:"x"`
	Y    float64 `toml:"y" yaml:"y" json:"y"`
	Aura string  `toml:"aura,omitempty" yaml:"aura,omitempty" json:"aura,omitempty"`
}

// FileNode is one sigil.
type FileNode struct {
	ID    int64   `toml:"id" yaml:"id" json:"id"`
	Shape string  `toml:"shape" yaml:"shape" json:"shape"`
	Glyph string  `toml:"glyph,omitempty" yaml:"glyph,omitempty" json:"glyph,omitempty"`
	Rune  bool    `toml:"rune,omitempty" yaml:"rune,omitempty" json:"rune,omitempty"`
	X     float64 `toml:"x" yaml:"x" json:"x"`
	Y     float64 `toml:"y" yaml:"y" json:"y"`
}

// FileLine is one line, directed from From to To.
type FileLine struct {
	ID   int64 `toml:"id" yaml:"id" json:"id"`
	From int64 `toml:"from" yaml:"from" json:"from"`
	To   int64 `toml:"to" yaml:"to" json:"to"`
}

// FromFile converts a decoded file into a level and checks that it builds.
func FromFile(f File) (*Level, error) {
	lvl := &Level{Name: f.Name}

	aura := rules.AuraCircle
	if f.Cursor.Aura != "" {
		a, err := rules.ParseAura(f.Cursor.Aura)
		if err != nil {
			return nil, &Error{Field: "cursor.aura", Message: err.Error()}
		}
		aura = a
	}
	lvl.Cursor = cursor.Cursor{Aura: aura, Position: graph.Pt(f.Cursor.X, f.Cursor.Y)}

	for i, n := range f.Nodes {
		shape, err := graph.ParseShape(n.Shape)
		if err != nil {
			return nil, &Error{Field: fmt.Sprintf("nodes[%d].shape", i), Message: err.Error()}
		}
		glyph, err := graph.ParseGlyph(n.Glyph)
		if err != nil {
			return nil, &Error{Field: fmt.Sprintf("nodes[%d].glyph", i), Message: err.Error()}
		}
		lvl.Graph.Nodes = append(lvl.Graph.Nodes, graph.NodeSpec{
			ID:         graph.NodeID(n.ID),
			Shape:      shape,
			Glyph:      glyph,
			Position:   graph.Pt(n.X, n.Y),
			RuneActive: n.Rune,
		})
	}
	for _, l := range f.Lines {
		lvl.Graph.Lines = append(lvl.Graph.Lines, graph.LineSpec{
			ID:   graph.LineID(l.ID),
			From: graph.NodeID(l.From),
			To:   graph.NodeID(l.To),
		})
	}

	if _, err := lvl.Build(); err != nil {
		return nil, err
	}
	return lvl, nil
}

// File converts the level back to its on-disk schema.
func (l *Level) File() File {
	f := File{
		Name: l.Name,
		Cursor: FileCursor{
			X:    l.Cursor.Position.X,
			Y:    l.Cursor.Position.Y,
			Aura: l.Cursor.Aura.String(),
		},
	}
	for _, n := range l.Graph.Nodes {
		fn := FileNode{
			ID:    int64(n.ID),
			Shape: n.Shape.String(),
			Rune:  n.RuneActive,
			X:     n.Position.X,
			Y:     n.Position.Y,
		}
		if n.Glyph != graph.GlyphNone {
			fn.Glyph = n.Glyph.String()
		}
		f.Nodes = append(f.Nodes, fn)
	}
	for _, ln := range l.Graph.Lines {
		f.Lines = append(f.Lines, FileLine{ID: int64(ln.ID), From: int64(ln.From), To: int64(ln.To)})
	}
	return f
}

// Build creates a fresh graph store for the level.
func (l *Level) Build() (*graph.Store, error) {
	s, err := graph.Load(l.Graph)
	if err != nil {
		return nil, &Error{Field: "graph", Message: "level does not build", Err: err}
	}
	return s, nil
}

// Hash fingerprints the level content. The name is not part of it.
func (l *Level) Hash() (string, error) {
	nodes := make(canon.Array, 0, len(l.Graph.Nodes))
	for _, n := range l.Graph.Nodes {
		nodes = append(nodes, canon.Object{
			"id":    canon.Int(n.ID),
			"shape": canon.String(n.Shape.String()),
			"glyph": canon.String(n.Glyph.String()),
			"rune":  canon.Bool(n.RuneActive),
			"x":     canon.Fixed(n.Position.X),
			"y":     canon.Fixed(n.Position.Y),
		})
	}
	lines := make(canon.Array, 0, len(l.Graph.Lines))
	for _, ln := range l.Graph.Lines {
		lines = append(lines, canon.Object{
			"id":   canon.Int(ln.ID),
			"from": canon.Int(ln.From),
			"to":   canon.Int(ln.To),
		})
	}
	return canon.Hash(canon.DomainLevel, canon.Object{
		"cursor": canon.Object{
			"aura": canon.String(l.Cursor.Aura.String()),
			"x":    canon.Fixed(l.Cursor.Position.X),
			"y":    canon.Fixed(l.Cursor.Position.Y),
		},
		"nodes": nodes,
		"lines": lines,
	})
}
