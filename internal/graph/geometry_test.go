package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentIntersect(t *testing.T) {
	path := Segment{A: Pt(0, 0), B: Pt(4, 0)}

	tests := []struct {
		name  string
		other Segment
		ok    bool
		t     float64
	}{
		{"crossing", Segment{A: Pt(1, -1), B: Pt(1, 1)}, true, 0.25},
		{"touching endpoint", Segment{A: Pt(3, 0), B: Pt(3, 5)}, true, 0.75},
		{"miss", Segment{A: Pt(5, -1), B: Pt(5, 1)}, false, 0},
		{"parallel", Segment{A: Pt(0, 1), B: Pt(4, 1)}, false, 0},
		{"collinear overlap", Segment{A: Pt(6, 0), B: Pt(2, 0)}, true, 0.5},
		{"collinear disjoint", Segment{A: Pt(5, 0), B: Pt(6, 0)}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := path.Intersect(tt.other)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.t, got, 1e-9)
			}
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	tri := []Point{Pt(0, 0), Pt(4, 0), Pt(2, 4)}

	assert.True(t, PointInPolygon(Pt(2, 1), tri))
	assert.False(t, PointInPolygon(Pt(5, 1), tri))
	assert.False(t, PointInPolygon(Pt(2, 0), tri), "boundary is outside")
	assert.False(t, PointInPolygon(Pt(0, 0), tri), "vertex is outside")
	assert.False(t, PointInPolygon(Pt(1, 1), tri[:2]), "degenerate polygon")
}

func TestSegmentContains(t *testing.T) {
	s := Segment{A: Pt(0, 0), B: Pt(2, 2)}
	assert.True(t, s.Contains(Pt(1, 1)))
	assert.False(t, s.Contains(Pt(3, 3)))
	assert.False(t, s.Contains(Pt(1, 0)))
}
