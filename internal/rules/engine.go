package rules

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/sigil/internal/graph"
)

// DefaultCloneOffset is where a Circle-aura clone is placed relative to its
// source, in grid units.
var DefaultCloneOffset = graph.Pt(1, 1)

// Engine resolves collisions. It holds configuration only; all state lives
// in the graph store handed to Resolve.
type Engine struct {
	cloneOffset graph.Point
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCloneOffset sets the displacement of cloned sigils.
func WithCloneOffset(p graph.Point) Option {
	return func(e *Engine) {
		e.cloneOffset = p
	}
}

// WithLogger sets the logger. Resolution details are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a rule engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		cloneOffset: DefaultCloneOffset,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CloneOffset returns the configured clone displacement.
func (e *Engine) CloneOffset() graph.Point {
	return e.cloneOffset
}

// resolution carries the working state of one Resolve call.
type resolution struct {
	store   *graph.Store
	c       Collision
	node    graph.Node
	outcome Outcome

	// rewired holds nodes whose lines were moved by Hexagon fan-out.
	rewired map[graph.NodeID]bool
}

func (r *resolution) emit(e Effect) {
	r.outcome.Effects = append(r.outcome.Effects, e)
}

// Resolve applies one collision to s atomically.
//
// On success the outcome has been committed to s. On any error s is
// unchanged: INVALID_NODE / UNKNOWN_LINE for collisions naming missing or
// unrelated entities, RULE_CONFLICT for contradictory effects.
func (e *Engine) Resolve(s *graph.Store, c Collision) (Outcome, error) {
	if !c.Aura.Valid() {
		return Outcome{}, fmt.Errorf("resolve collision: invalid aura %d", int(c.Aura))
	}
	line, ok := s.Line(c.Line)
	if !ok {
		return Outcome{}, &graph.Error{Code: graph.CodeUnknownLine, Line: c.Line, Message: "collision line does not exist"}
	}
	node, ok := s.Node(c.Node)
	if !ok {
		return Outcome{}, &graph.Error{Code: graph.CodeInvalidNode, Node: c.Node, Message: "collision node does not exist"}
	}
	if !line.Has(c.Node) {
		return Outcome{}, &graph.Error{Code: graph.CodeInvalidNode, Node: c.Node, Line: c.Line, Message: "collision node is not an endpoint of the line"}
	}

	tx := s.Begin()
	defer tx.Rollback()

	r := &resolution{
		store:   tx.Store(),
		c:       c,
		node:    node,
		outcome: Outcome{Collision: c, Effects: []Effect{}},
		rewired: make(map[graph.NodeID]bool),
	}

	if err := e.resolveShape(r, line); err != nil {
		return Outcome{}, err
	}
	if !r.outcome.Rejected {
		if err := e.resolveAura(r); err != nil {
			return Outcome{}, err
		}
	}
	if err := sweepTriangles(r); err != nil {
		return Outcome{}, err
	}

	tx.Commit()

	e.logger.Debug("collision resolved",
		"node", c.Node,
		"line", c.Line,
		"shape", node.Shape.String(),
		"aura", c.Aura.String(),
		"rejected", r.outcome.Rejected,
		"effects", len(r.outcome.Effects),
	)
	return r.outcome, nil
}

// resolveShape is phase one.
func (e *Engine) resolveShape(r *resolution, crossed graph.Line) error {
	dir, _ := crossed.DirectionAt(r.node.ID)

	switch r.node.Shape {
	case graph.ShapeCircle, graph.ShapeSquare:
		return nil

	case graph.ShapeTriangle:
		if dir != graph.Entering {
			return nil
		}
		if err := r.store.Disconnect(crossed.ID); err != nil {
			return err
		}
		r.outcome.Rejected = true
		r.emit(Effect{Kind: EffectReject, Node: r.node.ID, Line: crossed.ID})
		r.emit(Effect{Kind: EffectDisconnect, Node: r.node.ID, Line: crossed.ID})
		return nil

	case graph.ShapePentagon:
		for _, l := range r.store.Entering(r.node.ID) {
			if err := r.store.SetDirection(l.ID, r.node.ID, graph.Exiting); err != nil {
				return err
			}
			r.emit(Effect{Kind: EffectFlip, Node: r.node.ID, Line: l.ID})
		}
		return nil

	case graph.ShapeHexagon:
		if dir != graph.Exiting {
			return nil
		}
		return fanOut(r, crossed)

	default:
		return fmt.Errorf("resolve shape: unhandled shape %s", r.node.Shape)
	}
}

// fanOut moves the hexagon end of an exiting line onto every current
// entrant. The first entrant reuses the line, the rest get new lines with
// the same orientation. Entrants equal to the far endpoint, and pairings
// that already have a line, are skipped. With no usable entrant the line is
// simply disconnected.
func fanOut(r *resolution, crossed graph.Line) error {
	hex := r.node.ID
	far := crossed.Other(hex)
	hexIsFrom := crossed.From == hex
	farDir, _ := crossed.DirectionAt(far)

	pair := func(entrant graph.NodeID) (from, to graph.NodeID) {
		if hexIsFrom {
			return entrant, far
		}
		return far, entrant
	}

	var targets []graph.NodeID
	for _, l := range r.store.Entering(hex) {
		entrant := l.Other(hex)
		if entrant == far || slices.Contains(targets, entrant) {
			continue
		}
		if _, dup := r.store.FindLine(pair(entrant)); dup {
			continue
		}
		targets = append(targets, entrant)
	}

	if len(targets) == 0 {
		if err := r.store.Disconnect(crossed.ID); err != nil {
			return err
		}
		r.emit(Effect{Kind: EffectDisconnect, Node: hex, Line: crossed.ID})
		return nil
	}

	r.rewired[hex] = true
	for i, entrant := range targets {
		r.rewired[entrant] = true
		if i == 0 {
			if err := r.store.ReconnectEndpoint(crossed.ID, hex, entrant); err != nil {
				return err
			}
			r.emit(Effect{Kind: EffectReconnect, Node: hex, Line: crossed.ID, Target: entrant})
			continue
		}
		id, err := r.store.Connect(pair(entrant))
		if err != nil {
			return err
		}
		if err := r.store.SetDirection(id, far, farDir); err != nil {
			return err
		}
		r.emit(Effect{Kind: EffectConnect, Node: entrant, Line: id, Target: far})
	}
	return nil
}

// resolveAura is phase two; it acts on the post-shape graph.
func (e *Engine) resolveAura(r *resolution) error {
	id := r.node.ID

	switch r.c.Aura {
	case AuraCircle:
		return e.clone(r)

	case AuraTriangle:
		if r.rewired[id] {
			return &ConflictError{
				Collision: r.c,
				Shape:     r.node.Shape,
				Message:   "destroying a node rewired by hexagon fan-out in the same collision",
			}
		}
		removed, err := r.store.DestroyNode(id)
		if err != nil {
			return err
		}
		r.emit(Effect{Kind: EffectDestroy, Node: id})
		for _, lid := range removed {
			r.emit(Effect{Kind: EffectDisconnect, Node: id, Line: lid})
		}
		return nil

	case AuraSquare:
		active, err := r.store.Toggle(id)
		if err != nil {
			return err
		}
		r.emit(Effect{Kind: EffectToggle, Node: id, Active: active})
		return nil

	default:
		return fmt.Errorf("resolve aura: unhandled aura %s", r.c.Aura)
	}
}

// clone adds a copy of the collision node and mirrors its incident lines,
// directions included, onto the copy.
func (e *Engine) clone(r *resolution) error {
	src, ok := r.store.Node(r.node.ID)
	if !ok {
		return &graph.Error{Code: graph.CodeInvalidNode, Node: r.node.ID, Message: "clone source vanished"}
	}
	cloneID, err := r.store.AddNode(graph.Node{
		Shape:      src.Shape,
		Glyph:      src.Glyph,
		RuneActive: src.RuneActive,
		Position:   src.Position.Add(e.cloneOffset),
	})
	if err != nil {
		return err
	}
	r.emit(Effect{Kind: EffectClone, Node: src.ID, Target: cloneID})

	for _, l := range r.store.Incident(src.ID) {
		from, to := l.From, l.To
		if from == src.ID {
			from = cloneID
		} else {
			to = cloneID
		}
		id, err := r.store.Connect(from, to)
		if err != nil {
			return err
		}
		for _, end := range []graph.NodeID{l.From, l.To} {
			dir, _ := l.DirectionAt(end)
			at := end
			if end == src.ID {
				at = cloneID
			}
			if err := r.store.SetDirection(id, at, dir); err != nil {
				return err
			}
		}
		r.emit(Effect{Kind: EffectConnect, Node: cloneID, Line: id, Target: l.Other(src.ID)})
	}
	return nil
}

// sweepTriangles removes every entering line left at a Triangle node.
func sweepTriangles(r *resolution) error {
	for _, n := range r.store.Nodes() {
		if n.Shape != graph.ShapeTriangle {
			continue
		}
		for _, l := range r.store.Entering(n.ID) {
			if err := r.store.Disconnect(l.ID); err != nil {
				return err
			}
			r.emit(Effect{Kind: EffectPrune, Node: n.ID, Line: l.ID})
		}
	}
	return nil
}
