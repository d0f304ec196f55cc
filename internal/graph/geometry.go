package graph

import "math"

// Epsilon is the tolerance for geometric comparisons.
const Epsilon = 1e-9

// Point is a position in puzzle space (grid units).
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Near(q Point) bool { return p.Dist(q) <= Epsilon }
func (p Point) Lerp(q Point, t float64) Point { return p.Add(q.Sub(p).Scale(t)) }

// Segment is a straight path from A to B.
type Segment struct {
	A, B Point
}

// Length returns the segment length.
func (s Segment) Length() float64 { return s.A.Dist(s.B) }

// Contains reports whether p lies on the segment.
func (s Segment) Contains(p Point) bool {
	d := s.B.Sub(s.A)
	if math.Abs(d.Cross(p.Sub(s.A))) > Epsilon*math.Max(1, d.Dot(d)) {
		return false
	}
	return p.X >= math.Min(s.A.X, s.B.X)-Epsilon && p.X <= math.Max(s.A.X, s.B.X)+Epsilon &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-Epsilon && p.Y <= math.Max(s.A.Y, s.B.Y)+Epsilon
}

// Intersect returns the first point where s touches o, as a parameter t in
// [0, 1] along s. Collinear overlaps report the start of the overlap.
func (s Segment) Intersect(o Segment) (t float64, ok bool) {
	r := s.B.Sub(s.A)
	q := o.B.Sub(o.A)
	denom := r.Cross(q)
	diff := o.A.Sub(s.A)

	if math.Abs(denom) <= Epsilon {
		if math.Abs(diff.Cross(r)) > Epsilon {
			return 0, false // parallel, not collinear
		}
		rr := r.Dot(r)
		if rr <= Epsilon {
			// s is a point
			if o.Contains(s.A) {
				return 0, true
			}
			return 0, false
		}
		t0 := diff.Dot(r) / rr
		t1 := o.B.Sub(s.A).Dot(r) / rr
		lo, hi := math.Min(t0, t1), math.Max(t0, t1)
		if hi < -Epsilon || lo > 1+Epsilon {
			return 0, false
		}
		return clamp01(lo), true
	}

	t = diff.Cross(q) / denom
	u := diff.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return 0, false
	}
	return clamp01(t), true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// PointInPolygon reports whether p lies strictly inside the polygon.
// Points on the boundary are outside.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[j], poly[i]
		if (Segment{A: a, B: b}).Contains(p) {
			return false
		}
		if (b.Y > p.Y) != (a.Y > p.Y) {
			x := (a.X-b.X)*(p.Y-b.Y)/(a.Y-b.Y) + b.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
