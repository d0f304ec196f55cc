package graph

import (
	"maps"
	"slices"
)

// IsConnected reports whether node id has at least one incident line.
func (s *Store) IsConnected(id NodeID) bool {
	for _, l := range s.lines {
		if l.Has(id) {
			return true
		}
	}
	return false
}

// IsLooped reports whether node id lies on a cycle of lines. Directions are
// ignored; two lines joining the same pair of nodes form a cycle.
func (s *Store) IsLooped(id NodeID) bool {
	for _, l := range s.Incident(id) {
		if s.reachableWithout(l.Other(id), id, l.ID) {
			return true
		}
	}
	return false
}

// reachableWithout walks the undirected line graph from `from` looking for
// `to`, never using line `skip`.
func (s *Store) reachableWithout(from, to NodeID, skip LineID) bool {
	adj := s.adjacency(skip)
	seen := map[NodeID]bool{from: true}
	frontier := []NodeID{from}
	for len(frontier) > 0 {
		n := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if n == to {
			return true
		}
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return false
}

// adjacency builds an undirected neighbour list, skipping one line.
// Neighbour lists are sorted so traversal order is deterministic.
func (s *Store) adjacency(skip LineID) map[NodeID][]NodeID {
	adj := make(map[NodeID][]NodeID, len(s.nodes))
	for id, l := range s.lines {
		if id == skip {
			continue
		}
		adj[l.From] = append(adj[l.From], l.To)
		adj[l.To] = append(adj[l.To], l.From)
	}
	for n, list := range adj {
		slices.Sort(list)
		adj[n] = slices.Compact(list)
	}
	return adj
}

// Loops enumerates the simple cycles (three or more distinct nodes) of the
// undirected line graph. Each cycle is reported once, starting at its lowest
// node id and continuing toward the lower of its two neighbours.
//
// Enumeration stops after the store's loop budget; complete is false then.
func (s *Store) Loops() (loops [][]NodeID, complete bool) {
	adj := s.adjacency(0)
	order := slices.Sorted(maps.Keys(adj))
	budget := s.loopBudget
	if budget < 1 {
		budget = DefaultLoopBudget
	}

	complete = true
	onPath := make(map[NodeID]bool)
	var path []NodeID

	var visit func(start, n NodeID) bool
	visit = func(start, n NodeID) bool {
		for _, next := range adj[n] {
			if next == start && len(path) >= 3 && path[1] < path[len(path)-1] {
				loops = append(loops, slices.Clone(path))
				if len(loops) >= budget {
					complete = false
					return false
				}
				continue
			}
			if next <= start || onPath[next] {
				continue
			}
			onPath[next] = true
			path = append(path, next)
			if !visit(start, next) {
				return false
			}
			path = path[:len(path)-1]
			onPath[next] = false
		}
		return true
	}

	for _, start := range order {
		path = append(path[:0], start)
		onPath[start] = true
		ok := visit(start, start)
		onPath[start] = false
		if !ok {
			break
		}
	}
	return loops, complete
}

// IsEnclosed reports whether node id lies strictly inside the polygon of a
// loop it is not part of.
func (s *Store) IsEnclosed(id NodeID) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	loops, _ := s.Loops()
	for _, loop := range loops {
		if slices.Contains(loop, id) {
			continue
		}
		if PointInPolygon(n.Position, s.polygon(loop)) {
			return true
		}
	}
	return false
}

// EnclosingLoops returns every loop whose polygon strictly contains node id.
func (s *Store) EnclosingLoops(id NodeID) [][]NodeID {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	var out [][]NodeID
	loops, _ := s.Loops()
	for _, loop := range loops {
		if !slices.Contains(loop, id) && PointInPolygon(n.Position, s.polygon(loop)) {
			out = append(out, loop)
		}
	}
	return out
}

func (s *Store) polygon(loop []NodeID) []Point {
	poly := make([]Point, len(loop))
	for i, id := range loop {
		poly[i] = s.nodes[id].Position
	}
	return poly
}

// Satisfied reports whether the glyph condition of node id holds.
// Nodes without a glyph are always satisfied.
func (s *Store) Satisfied(id NodeID) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	switch n.Glyph {
	case GlyphAlpha:
		return s.IsConnected(id)
	case GlyphPhi:
		return !s.IsConnected(id)
	case GlyphSigma:
		return s.IsLooped(id)
	case GlyphDelta:
		return s.IsEnclosed(id)
	default:
		return true
	}
}

// Segment returns the geometry of a line.
func (s *Store) Segment(id LineID) (Segment, bool) {
	l, ok := s.lines[id]
	if !ok {
		return Segment{}, false
	}
	return Segment{A: s.nodes[l.From].Position, B: s.nodes[l.To].Position}, true
}
