// Package paths provides tools for clipping 2d line segments, paths
// and polygons against an axis-aligned rectangle.
package paths

import "math"

// Vec2 is a 2-dimensional vector.
type Vec2 [2]float64

// A Segment is a line segment from the first point to the second.
type Segment [2]Vec2

// A Path is a contiguous series of line segments, from the
// first point in the V slice to the last.
type Path struct {
	V []Vec2
}

// A Polygon is a closed loop of vertices. The last vertex is
// implicitly joined to the first.
type Polygon struct {
	V []Vec2
}

// Bounds describes an axis-aligned bounding box. It's also the
// clip window: Min is (xmin, ymin) and Max is (xmax, ymax).
type Bounds struct {
	Min, Max Vec2
}

// Rect returns the bounds with the given corners.
func Rect(xmin, ymin, xmax, ymax float64) Bounds {
	return Bounds{Min: Vec2{xmin, ymin}, Max: Vec2{xmax, ymax}}
}

// Paths is a set of paths and polygons, along with a view bounds.
type Paths struct {
	Bounds   Bounds
	P        []Path
	Polygons []Polygon
}

// Clone returns a deep copy of the paths.
func (ps *Paths) Clone() *Paths {
	np := &Paths{Bounds: ps.Bounds}
	for _, p := range ps.P {
		np.P = append(np.P, Path{V: append([]Vec2(nil), p.V...)})
	}
	for _, p := range ps.Polygons {
		np.Polygons = append(np.Polygons, Polygon{V: append([]Vec2(nil), p.V...)})
	}
	return np
}

// TightenBounds adjusts the bounds to exactly contain the paths
// and polygons. If there are no vertices, the bounds are set to zero.
func (ps *Paths) TightenBounds() {
	inf := math.Inf(1)
	min := Vec2{inf, inf}
	max := Vec2{-inf, -inf}
	i := 0
	grow := func(vs []Vec2) {
		for _, v := range vs {
			i++
			min[0] = math.Min(min[0], v[0])
			min[1] = math.Min(min[1], v[1])
			max[0] = math.Max(max[0], v[0])
			max[1] = math.Max(max[1], v[1])
		}
	}
	for _, p := range ps.P {
		grow(p.V)
	}
	for _, p := range ps.Polygons {
		grow(p.V)
	}
	if i == 0 {
		ps.Bounds = Bounds{}
		return
	}
	ps.Bounds = Bounds{
		Min: min,
		Max: max,
	}
}

// Union returns the smallest bounds containing both b and c.
func (b Bounds) Union(c Bounds) Bounds {
	return Bounds{
		Min: Vec2{math.Min(b.Min[0], c.Min[0]), math.Min(b.Min[1], c.Min[1])},
		Max: Vec2{math.Max(b.Max[0], c.Max[0]), math.Max(b.Max[1], c.Max[1])},
	}
}

// move adds a new (initially empty) path starting at x,
// unless the last path already ends at x.
func (ps *Paths) move(x Vec2) {
	if len(ps.P) == 0 {
		ps.P = append(ps.P, Path{V: []Vec2{x}})
		return
	}
	p := &ps.P[len(ps.P)-1]
	if len(p.V) > 0 && p.V[len(p.V)-1] == x {
		return
	}
	ps.P = append(ps.P, Path{V: []Vec2{x}})
}

// line extends the last path with an edge that goes to x.
func (ps *Paths) line(x Vec2) {
	p := &ps.P[len(ps.P)-1]
	p.V = append(p.V, x)
}

// close turns the last path into a polygon. The closing vertex is
// dropped if it repeats the first one.
func (ps *Paths) close() {
	if len(ps.P) == 0 {
		return
	}
	p := ps.P[len(ps.P)-1]
	ps.P = ps.P[:len(ps.P)-1]
	v := p.V
	if len(v) > 1 && v[0] == v[len(v)-1] {
		v = v[:len(v)-1]
	}
	ps.Polygons = append(ps.Polygons, Polygon{V: v})
}
