package paths

import "strconv"

// frac returns s such that x*(1-s)+y*s = t
func frac(x, y, t float64) float64 {
	return (t - x) / (y - x)
}

// A halfPlane is the inside of one edge of a clip rectangle.
type halfPlane struct {
	axis int  // 0 for a vertical edge (x constant), 1 for a horizontal one
	max  bool // the edge is b.Max[axis] rather than b.Min[axis]
}

// The passes of ClipPolygon, in order: left, right, bottom, top.
var halfPlanes = [4]halfPlane{
	{axis: 0, max: false},
	{axis: 0, max: true},
	{axis: 1, max: false},
	{axis: 1, max: true},
}

func (h halfPlane) edge(b Bounds) float64 {
	if h.max {
		return b.Max[h.axis]
	}
	return b.Min[h.axis]
}

// inside reports whether v is inside the half-plane. Points on
// the edge are inside.
func (h halfPlane) inside(v Vec2, b Bounds) bool {
	if h.max {
		return v[h.axis] <= b.Max[h.axis]
	}
	return v[h.axis] >= b.Min[h.axis]
}

// intersect returns where the segment s-e meets the edge line.
// A zero-length segment gives s, and a segment parallel to the
// edge gives the edge paired with s's other coordinate.
func (h halfPlane) intersect(s, e Vec2, b Bounds) Vec2 {
	if s == e {
		return s
	}
	a, o := h.axis, 1-h.axis
	t := h.edge(b)
	var r Vec2
	r[a] = t
	r[o] = s[o]
	if e[a] == s[a] {
		return r
	}
	r[o] = s[o] + frac(s[a], e[a], t)*(e[o]-s[o])
	return r
}

// clip clips the closed loop in against the half-plane.
func (h halfPlane) clip(in []Vec2, b Bounds) []Vec2 {
	out := make([]Vec2, 0, len(in)+len(in)/2+1)
	s := in[len(in)-1]
	sIn := h.inside(s, b)
	for _, e := range in {
		eIn := h.inside(e, b)
		if eIn {
			if !sIn {
				out = append(out, h.intersect(s, e, b))
			}
			out = append(out, e)
		} else if sIn {
			out = append(out, h.intersect(s, e, b))
		}
		s, sIn = e, eIn
	}
	return out
}

// ClipPolygon clips p to b using the Sutherland-Hodgman algorithm.
// The result may be empty, but the function never fails. Coordinates
// of the result are rounded to 6 decimal places.
func ClipPolygon(p Polygon, b Bounds) Polygon {
	vs := append([]Vec2(nil), p.V...)
	for _, h := range halfPlanes {
		if len(vs) == 0 {
			break
		}
		vs = h.clip(vs, b)
	}
	if len(vs) == 0 {
		return Polygon{V: []Vec2{}}
	}
	for i, v := range vs {
		vs[i] = Vec2{Round6(v[0]), Round6(v[1])}
	}
	return Polygon{V: vs}
}

// Round6 rounds x to 6 decimal places. Rounding is decided on the
// exact binary value of x, with ties to even.
func Round6(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 6, 64), 64)
	if err != nil {
		return x
	}
	return r
}
