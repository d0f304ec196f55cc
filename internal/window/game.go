package window

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/roach88/sigil/internal/cursor"
	"github.com/roach88/sigil/internal/engine"
	"github.com/roach88/sigil/internal/graph"
	"github.com/roach88/sigil/internal/render"
	"github.com/roach88/sigil/internal/rules"
)

// Defaults for Run.
const (
	DefaultWidth  = 960
	DefaultHeight = 720
	DefaultStep   = 0.5
	tps           = 60
)

// Option configures Run.
type Option func(*game)

// WithSize sets the window size in pixels.
func WithSize(w, h int) Option {
	return func(g *game) {
		if w > 0 && h > 0 {
			g.width, g.height = w, h
		}
	}
}

// WithStep sets the cursor step per key press.
func WithStep(d float64) Option {
	return func(g *game) {
		if d > 0 {
			g.step = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *game) {
		if l != nil {
			g.logger = l
		}
	}
}

type game struct {
	ctx     context.Context
	session *engine.Session
	logger  *slog.Logger

	width, height int
	step          float64
	ticks         int

	atlases Atlases
	images  map[render.Atlas]*ebiten.Image
	vp      render.Viewport
}

// Run opens a window on s and blocks until it is closed or Escape is
// pressed.
func Run(ctx context.Context, s *engine.Session, opts ...Option) error {
	g := &game{
		ctx:     ctx,
		session: s,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		width:   DefaultWidth,
		height:  DefaultHeight,
		step:    DefaultStep,
		atlases: Rasterise(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.fit()

	ebiten.SetWindowTitle("sigil: " + s.Level().Name)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetTPS(tps)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *game) fit() {
	g.vp = render.Fit(g.session.Snapshot(), float64(g.width)/float64(g.height), 1)
}

var moveKeys = []struct {
	key ebiten.Key
	dir graph.Point
}{
	{ebiten.KeyArrowUp, graph.Pt(0, 1)},
	{ebiten.KeyArrowDown, graph.Pt(0, -1)},
	{ebiten.KeyArrowLeft, graph.Pt(-1, 0)},
	{ebiten.KeyArrowRight, graph.Pt(1, 0)},
}

var auraKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3}

func (g *game) Update() error {
	g.ticks++
	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for _, mk := range moveKeys {
		if !inpututil.IsKeyJustPressed(mk.key) {
			continue
		}
		if _, err := g.session.Move(g.ctx, mk.dir.Scale(g.step)); err != nil {
			if !rules.IsRuleConflict(err) && !cursor.IsCollisionsExceeded(err) {
				return fmt.Errorf("move: %w", err)
			}
			g.logger.Warn("move refused", "error", err)
		}
	}
	for i, k := range auraKeys {
		if inpututil.IsKeyJustPressed(k) {
			if err := g.session.SelectAura(g.ctx, rules.Auras[i]); err != nil {
				return err
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		if _, err := g.session.Undo(g.ctx); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.session.Load(g.ctx, g.session.Level()); err != nil {
			return err
		}
		g.fit()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.images == nil {
		g.images = map[render.Atlas]*ebiten.Image{
			render.AtlasOrb:   ebiten.NewImageFromImage(g.atlases.Orb),
			render.AtlasGlyph: ebiten.NewImageFromImage(g.atlases.Glyph),
			render.AtlasLine:  ebiten.NewImageFromImage(g.atlases.Line),
		}
	}
	frame, err := render.Build(g.session.Snapshot(), g.vp, render.WithTime(float64(g.ticks)/tps))
	if err != nil {
		g.logger.Error("build frame", "error", err)
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	for _, b := range Batches(frame, w, h, g.atlases) {
		op := &ebiten.DrawTrianglesOptions{}
		if b.Atlas == render.AtlasLine {
			op.Address = ebiten.AddressRepeat
		}
		screen.DrawTriangles(b.Vertices, b.Indices, g.images[b.Atlas], op)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
