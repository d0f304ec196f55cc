package window

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/roach88/sigil/internal/render"
)

// Batch is the geometry for one DrawTriangles call.
type Batch struct {
	Atlas    render.Atlas
	Vertices []ebiten.Vertex
	Indices  []uint16
}

// Batches converts a frame into draw calls for a screen of w×h pixels.
// Consecutive quads on the same atlas share a batch, so layer order is
// kept. Texture coordinates are scaled to the atlas image size.
func Batches(f render.Frame, w, h int, atlases Atlases) []Batch {
	var out []Batch
	for _, q := range f.Quads {
		if len(out) == 0 || out[len(out)-1].Atlas != q.Atlas {
			out = append(out, Batch{Atlas: q.Atlas})
		}
		b := &out[len(out)-1]
		size := atlases.Image(q.Atlas).Bounds().Size()
		for _, v := range q.Vertices {
			b.Vertices = append(b.Vertices, ebiten.Vertex{
				DstX:   (v.X + 1) / 2 * float32(w),
				DstY:   (1 - v.Y) / 2 * float32(h),
				SrcX:   v.U * float32(size.X),
				SrcY:   v.V * float32(size.Y),
				ColorR: v.Color[0],
				ColorG: v.Color[1],
				ColorB: v.Color[2],
				ColorA: v.Color[3],
			})
		}
	}
	for i := range out {
		out[i].Indices = render.Indices(len(out[i].Vertices) / 4)
	}
	return out
}
