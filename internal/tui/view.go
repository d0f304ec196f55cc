package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/render"
	"github.com/roach88/sigil/internal/rules"
)

// DefaultStep is how far one arrow key moves the cursor, in world units.
const DefaultStep = 0.5

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2.0

var (
	styleBase     = tcell.StyleDefault
	styleLine     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEntering = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleNode     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMet      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleUnmet    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleCursor   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

var shapeRunes = map[graph.Shape][2]rune{
	graph.ShapeCircle:   {'○', '●'},
	graph.ShapeTriangle: {'△', '▲'},
	graph.ShapeSquare:   {'□', '■'},
	graph.ShapePentagon: {'⬠', '⬟'},
	graph.ShapeHexagon:  {'⬡', '⬢'},
}

var glyphRunes = map[graph.Glyph]rune{
	graph.GlyphAlpha: 'α',
	graph.GlyphSigma: 'σ',
	graph.GlyphDelta: 'δ',
	graph.GlyphPhi:   'φ',
}

// NodeRune returns the cell character for a sigil.
func NodeRune(shape graph.Shape, active bool) rune {
	rs, ok := shapeRunes[shape]
	if !ok {
		return '?'
	}
	if active {
		return rs[1]
	}
	return rs[0]
}

// CursorRune returns the cell character for a cursor of aura a.
func CursorRune(a rules.Aura) rune {
	switch a {
	case rules.AuraTriangle:
		return '✕'
	case rules.AuraSquare:
		return '◇'
	default:
		return '◎'
	}
}

// View draws one session and handles its keys.
type View struct {
	screen  tcell.Screen
	session *engine.Session
	step    float64
	logger  *slog.Logger

	vp      render.Viewport
	message string
}

// Option configures a View.
type Option func(*View)

// WithStep sets the cursor step per key press.
func WithStep(d float64) Option {
	return func(v *View) {
		if d > 0 {
			v.step = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a view of s on screen. The screen must already be
// initialised.
func New(screen tcell.Screen, s *engine.Session, opts ...Option) *View {
	v := &View{
		screen:  screen,
		session: s,
		step:    DefaultStep,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.fit()
	return v
}

// fit recomputes the viewport for the current screen size.
func (v *View) fit() {
	w, h := v.screen.Size()
	rows := max(h-1, 1)
	aspect := float64(max(w, 1)) / (float64(rows) * cellAspect)
	v.vp = render.Fit(v.session.Snapshot(), aspect, 1)
}

// Message returns the status message shown after the last input.
func (v *View) Message() string { return v.message }

// cell maps a world point to a screen cell.
func (v *View) cell(p graph.Point) (col, row int) {
	w, h := v.screen.Size()
	x, y := v.vp.ToClip(p)
	col = int(math.Round(float64(x+1) / 2 * float64(w-1)))
	row = int(math.Round(float64(1-y) / 2 * float64(h-2)))
	return col, row
}

// Draw renders the current snapshot.
func (v *View) Draw() {
	v.screen.SetStyle(styleBase)
	v.screen.Clear()
	snap := v.session.Snapshot()

	pos := make(map[graph.NodeID]graph.Point, len(snap.Nodes))
	for _, n := range snap.Nodes {
		pos[n.ID] = n.Position
	}
	for _, l := range snap.Lines {
		v.drawLine(l, pos[l.From], pos[l.To])
	}
	for _, n := range snap.Nodes {
		v.drawNode(n)
	}
	col, row := v.cell(snap.Cursor.Position)
	v.screen.SetContent(col, row, CursorRune(snap.Cursor.Aura), nil, styleCursor)

	v.drawStatus(snap)
	v.screen.Show()
}

func (v *View) drawLine(l engine.LineView, a, b graph.Point) {
	x0, y0 := v.cell(a)
	x1, y1 := v.cell(b)
	n := max(abs(x1-x0), abs(y1-y0))
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		x := x0 + int(math.Round(t*float64(x1-x0)))
		y := y0 + int(math.Round(t*float64(y1-y0)))
		style := styleLine
		// Tint the half next to an entering end.
		if l.Directed && ((t > 0.5 && l.ToDirection == "entering") || (t <= 0.5 && l.FromDirection == "entering")) {
			style = styleEntering
		}
		v.screen.SetContent(x, y, '·', nil, style)
	}
}

func (v *View) drawNode(n engine.NodeView) {
	col, row := v.cell(n.Position)
	style := styleNode
	if n.Selected {
		style = styleSelected
	}
	v.screen.SetContent(col, row, NodeRune(n.Shape, n.RuneActive), nil, style)

	g, ok := glyphRunes[n.Glyph]
	if !ok {
		return
	}
	gs := styleLine
	if n.RuneActive {
		gs = styleUnmet
		if n.Satisfied {
			gs = styleMet
		}
	}
	v.screen.SetContent(col+runewidth.RuneWidth(NodeRune(n.Shape, n.RuneActive)), row, g, nil, gs)
}

func (v *View) drawStatus(snap engine.Snapshot) {
	w, h := v.screen.Size()
	parts := []string{
		v.session.Level().Name,
		"aura " + snap.Cursor.Aura.String(),
		fmt.Sprintf("seq %d", snap.Seq),
	}
	if snap.Solved {
		parts = append(parts, "SOLVED")
	}
	if v.message != "" {
		parts = append(parts, v.message)
	}
	line := runewidth.Truncate(strings.Join(parts, " │ "), w, "…")
	line = runewidth.FillRight(line, w)

	col := 0
	for _, r := range line {
		v.screen.SetContent(col, h-1, r, nil, styleStatus)
		col += max(runewidth.RuneWidth(r), 1)
	}
}

// HandleEvent applies one terminal event. It reports quit when the user
// asked to leave. Rule errors are shown on the status line, not returned.
func (v *View) HandleEvent(ctx context.Context, ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.fit()
		return false, nil
	case *tcell.EventKey:
		return v.handleKey(ctx, ev)
	}
	return false, nil
}

func (v *View) handleKey(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyUp:
		return false, v.move(ctx, graph.Pt(0, v.step))
	case tcell.KeyDown:
		return false, v.move(ctx, graph.Pt(0, -v.step))
	case tcell.KeyLeft:
		return false, v.move(ctx, graph.Pt(-v.step, 0))
	case tcell.KeyRight:
		return false, v.move(ctx, graph.Pt(v.step, 0))
	case tcell.KeyTab:
		return false, v.aura(ctx, v.session.Cursor().Aura.Next())
	case tcell.KeyRune:
	default:
		return false, nil
	}

	switch r := ev.Rune(); r {
	case 'q':
		return true, nil
	case 'k':
		return false, v.move(ctx, graph.Pt(0, v.step))
	case 'j':
		return false, v.move(ctx, graph.Pt(0, -v.step))
	case 'h':
		return false, v.move(ctx, graph.Pt(-v.step, 0))
	case 'l':
		return false, v.move(ctx, graph.Pt(v.step, 0))
	case '1', '2', '3':
		return false, v.aura(ctx, rules.Auras[r-'1'])
	case 'u':
		ok, err := v.session.Undo(ctx)
		if err != nil {
			return false, err
		}
		v.message = "nothing to undo"
		if ok {
			v.message = "undone"
		}
	case 'r':
		if err := v.session.Load(ctx, v.session.Level()); err != nil {
			return false, err
		}
		v.fit()
		v.message = "restarted"
	}
	return false, nil
}

func (v *View) move(ctx context.Context, delta graph.Point) error {
	step, err := v.session.Move(ctx, delta)
	if err != nil {
		if rules.IsRuleConflict(err) || cursor.IsCollisionsExceeded(err) {
			v.message = err.Error()
			v.logger.Warn("move refused", "error", err)
			return nil
		}
		return err
	}
	switch {
	case step.Stopped:
		v.message = "blocked"
	case len(step.Hits) > 0:
		v.message = fmt.Sprintf("%d collisions", len(step.Hits))
	default:
		v.message = ""
	}
	return nil
}

func (v *View) aura(ctx context.Context, a rules.Aura) error {
	if err := v.session.SelectAura(ctx, a); err != nil {
		return err
	}
	v.message = "aura " + a.String()
	return nil
}

// Run draws and processes events until the user quits or ctx ends.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			done, err := v.HandleEvent(ctx, ev)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			v.Draw()
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
