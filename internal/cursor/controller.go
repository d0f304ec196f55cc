package cursor

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/rules"
)

// Cursor is the player's cursor. The aura is fixed for the instance;
// changing aura means replacing the cursor.
type Cursor struct {
	Aura     rules.Aura  `json:"aura"`
	Position graph.Point `json:"position"`
}

// Crossing is a point where the movement path meets a line.
type Crossing struct {
	Line graph.LineID `json:"line"`
	Node graph.NodeID `json:"node"`

	// T is the parameter along the step's path, 0 at its start.
	T     float64     `json:"t"`
	Point graph.Point `json:"point"`
}

// Hit pairs a crossing with the outcome the rule engine committed for it.
type Hit struct {
	Crossing Crossing      `json:"crossing"`
	Outcome  rules.Outcome `json:"outcome"`
}

// Step records one completed movement.
type Step struct {
	From graph.Point `json:"from"`
	To   graph.Point `json:"to"`

	// End is where the cursor came to rest. It differs from To only when a
	// crossing was rejected.
	End     graph.Point `json:"end"`
	Stopped bool        `json:"stopped,omitempty"`
	Hits    []Hit       `json:"hits"`
}

// Controller owns the cursor and drives collisions into the rule engine.
type Controller struct {
	store  *graph.Store
	rules  *rules.Engine
	cursor Cursor

	maxCollisions int
	logger        *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxCollisions bounds the collisions resolved per step.
func WithMaxCollisions(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxCollisions = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller for the cursor start over store s.
func New(s *graph.Store, engine *rules.Engine, start Cursor, opts ...Option) (*Controller, error) {
	if s == nil || engine == nil {
		return nil, fmt.Errorf("cursor: store and rule engine are required")
	}
	if !start.Aura.Valid() {
		return nil, fmt.Errorf("cursor: invalid aura %d", int(start.Aura))
	}
	c := &Controller{
		store:         s,
		rules:         engine,
		cursor:        start,
		maxCollisions: DefaultMaxCollisions,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cursor returns the current cursor.
func (c *Controller) Cursor() Cursor {
	return c.cursor
}

// Reset replaces the cursor wholesale. Used when restoring history.
func (c *Controller) Reset(cur Cursor) error {
	if !cur.Aura.Valid() {
		return fmt.Errorf("cursor: invalid aura %d", int(cur.Aura))
	}
	c.cursor = cur
	return nil
}

// SelectAura swaps in a cursor of aura a at the current position.
func (c *Controller) SelectAura(a rules.Aura) error {
	if !a.Valid() {
		return fmt.Errorf("cursor: invalid aura %d", int(a))
	}
	c.cursor = Cursor{Aura: a, Position: c.cursor.Position}
	c.logger.Debug("aura selected", "aura", a.String())
	return nil
}

// Move advances the cursor by delta, resolving every crossing on the way.
//
// On error neither the graph nor the cursor has changed.
func (c *Controller) Move(delta graph.Point) (Step, error) {
	start := c.cursor.Position
	path := graph.Segment{A: start, B: start.Add(delta)}
	step := Step{From: path.A, To: path.B, End: path.B, Hits: []Hit{}}

	if path.Length() <= graph.Epsilon {
		step.End = start
		return step, nil
	}

	snapshot := c.store.Clone()
	budget := NewBudget(c.maxCollisions)
	resolved := make(map[graph.LineID]bool)
	lastT := 0.0

	for {
		x, ok := c.nextCrossing(path, lastT, resolved)
		if !ok {
			break
		}
		if err := budget.Check(); err != nil {
			c.store.Restore(snapshot)
			return Step{}, fmt.Errorf("move cursor: %w", err)
		}

		outcome, err := c.rules.Resolve(c.store, rules.Collision{
			Aura: c.cursor.Aura,
			Line: x.Line,
			Node: x.Node,
		})
		if err != nil {
			c.store.Restore(snapshot)
			return Step{}, fmt.Errorf("move cursor: collision at line %d: %w", x.Line, err)
		}

		resolved[x.Line] = true
		lastT = x.T
		step.Hits = append(step.Hits, Hit{Crossing: x, Outcome: outcome})

		if outcome.Rejected {
			step.End = x.Point
			step.Stopped = true
			break
		}
	}

	c.cursor.Position = step.End
	c.logger.Debug("cursor moved",
		"from", fmt.Sprintf("%g,%g", step.From.X, step.From.Y),
		"end", fmt.Sprintf("%g,%g", step.End.X, step.End.Y),
		"collisions", len(step.Hits),
		"stopped", step.Stopped,
	)
	return step, nil
}

// Crossings lists every line the segment from the cursor to cursor+delta
// would cross on the current graph, nearest first. The graph is not
// touched.
func (c *Controller) Crossings(delta graph.Point) []Crossing {
	start := c.cursor.Position
	path := graph.Segment{A: start, B: start.Add(delta)}
	if path.Length() <= graph.Epsilon {
		return nil
	}
	var out []Crossing
	for _, l := range c.store.Lines() {
		if x, ok := c.crossing(path, l); ok {
			out = append(out, x)
		}
	}
	sortCrossings(out)
	return out
}

// nextCrossing finds the nearest unresolved crossing at or beyond lastT.
// Crossings at the very start of the path are ignored so a cursor resting
// on a line does not collide with it again.
func (c *Controller) nextCrossing(path graph.Segment, lastT float64, resolved map[graph.LineID]bool) (Crossing, bool) {
	var best Crossing
	found := false
	for _, l := range c.store.Lines() {
		if resolved[l.ID] {
			continue
		}
		x, ok := c.crossing(path, l)
		if !ok || x.T < lastT-graph.Epsilon {
			continue
		}
		if !found || less(x, best) {
			best, found = x, true
		}
	}
	return best, found
}

func (c *Controller) crossing(path graph.Segment, l graph.Line) (Crossing, bool) {
	seg, ok := c.store.Segment(l.ID)
	if !ok {
		return Crossing{}, false
	}
	t, ok := path.Intersect(seg)
	if !ok || t <= graph.Epsilon {
		return Crossing{}, false
	}
	p := path.A.Lerp(path.B, t)
	return Crossing{Line: l.ID, Node: c.affected(l, p), T: t, Point: p}, true
}

// affected picks the endpoint of l nearer to p, the lower id on a tie.
func (c *Controller) affected(l graph.Line, p graph.Point) graph.NodeID {
	from, _ := c.store.Node(l.From)
	to, _ := c.store.Node(l.To)
	df, dt := p.Dist(from.Position), p.Dist(to.Position)
	if math.Abs(df-dt) <= graph.Epsilon {
		return min(l.From, l.To)
	}
	if df < dt {
		return l.From
	}
	return l.To
}

func less(a, b Crossing) bool {
	if math.Abs(a.T-b.T) > graph.Epsilon {
		return a.T < b.T
	}
	return a.Line < b.Line
}

func sortCrossings(xs []Crossing) {
	slices.SortStableFunc(xs, func(a, b Crossing) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})
}
