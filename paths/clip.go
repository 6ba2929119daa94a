package paths

import "strings"

// Outcode classifies a point by which sides of a Bounds it lies
// outside of. The zero Outcode means inside or on the boundary.
type Outcode uint8

const (
	Inside Outcode = 0
	Left   Outcode = 1
	Right  Outcode = 2
	Bottom Outcode = 4
	Top    Outcode = 8
)

func (c Outcode) String() string {
	if c == Inside {
		return "inside"
	}
	var parts []string
	for _, n := range []struct {
		bit  Outcode
		name string
	}{{Left, "left"}, {Right, "right"}, {Bottom, "bottom"}, {Top, "top"}} {
		if c&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ComputeOutcode returns the outcode of v relative to b.
// A point can't be both left and right, or both bottom and top.
func ComputeOutcode(v Vec2, b Bounds) Outcode {
	var c Outcode
	if v[0] < b.Min[0] {
		c |= Left
	} else if v[0] > b.Max[0] {
		c |= Right
	}
	if v[1] < b.Min[1] {
		c |= Bottom
	} else if v[1] > b.Max[1] {
		c |= Top
	}
	return c
}

// ClipSegment clips s to b using the Cohen-Sutherland algorithm, from
// https://en.wikipedia.org/wiki/Cohen%E2%80%93Sutherland_algorithm
// It returns false if no part of s is inside b. The clipped segment
// keeps the direction of s.
//
// A horizontal segment crossing the top or bottom edge keeps its x,
// and a vertical one crossing the left or right edge keeps its y.
func ClipSegment(s Segment, b Bounds) (Segment, bool) {
	v0, v1 := s[0], s[1]
	outcode0 := ComputeOutcode(v0, b)
	outcode1 := ComputeOutcode(v1, b)
	for {
		if outcode0 == 0 && outcode1 == 0 {
			return Segment{v0, v1}, true
		} else if (outcode0 & outcode1) != 0 {
			return Segment{}, false
		}
		outcodeOut := outcode0
		if outcodeOut == 0 {
			outcodeOut = outcode1
		}

		dx := v1[0] - v0[0]
		dy := v1[1] - v0[1]
		var v Vec2
		if (outcodeOut & Top) != 0 {
			v = Vec2{v0[0], b.Max[1]}
			if dy != 0 {
				v[0] += dx * (b.Max[1] - v0[1]) / dy
			}
		} else if (outcodeOut & Bottom) != 0 {
			v = Vec2{v0[0], b.Min[1]}
			if dy != 0 {
				v[0] += dx * (b.Min[1] - v0[1]) / dy
			}
		} else if (outcodeOut & Right) != 0 {
			v = Vec2{b.Max[0], v0[1]}
			if dx != 0 {
				v[1] += dy * (b.Max[0] - v0[0]) / dx
			}
		} else if (outcodeOut & Left) != 0 {
			v = Vec2{b.Min[0], v0[1]}
			if dx != 0 {
				v[1] += dy * (b.Min[0] - v0[0]) / dx
			}
		}
		if outcodeOut == outcode0 {
			v0 = v
			outcode0 = ComputeOutcode(v0, b)
		} else {
			v1 = v
			outcode1 = ComputeOutcode(v1, b)
		}
	}
}

// ClipSegments clips each segment to b, dropping the ones
// entirely outside. The order of the survivors is unchanged.
func ClipSegments(segs []Segment, b Bounds) []Segment {
	r := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if cs, ok := ClipSegment(s, b); ok {
			r = append(r, cs)
		}
	}
	return r
}

func clipPath(p Path, b Bounds) []Path {
	var parts []Path
	var curPath *Path
	var cont bool
	for i := 1; i < len(p.V); i++ {
		s, ok := ClipSegment(Segment{p.V[i-1], p.V[i]}, b)
		if !ok {
			cont = false
			continue
		}
		v0, v1 := s[0], s[1]
		if v0 != p.V[i-1] || !cont {
			parts = append(parts, Path{})
			curPath = &parts[len(parts)-1]
			curPath.V = append(curPath.V, v0)
		}
		curPath.V = append(curPath.V, v1)
		cont = (v1 == p.V[i])
	}
	// remove parts with 0 or 1 vertices if any.
	j := 0
	for i := 0; i < len(parts); i++ {
		if len(parts[i].V) < 2 {
			continue
		}
		parts[j] = parts[i]
		j++
	}
	return parts[:j]
}

// Clip removes all line segments outside the given bounds.
// If a path crosses the bounds, it's broken into multiple paths.
// Polygons are clipped with ClipPolygon, and dropped if nothing
// of them is left.
func (ps *Paths) Clip(b Bounds) {
	var result []Path
	for _, p := range ps.P {
		parts := clipPath(p, b)
		result = append(result, parts...)
	}
	ps.P = result

	var polys []Polygon
	for _, p := range ps.Polygons {
		cp := ClipPolygon(p, b)
		if len(cp.V) == 0 {
			continue
		}
		polys = append(polys, cp)
	}
	ps.Polygons = polys
}
