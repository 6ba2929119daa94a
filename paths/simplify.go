package paths

import (
	"math"
)

func vec2dist(v0, v1 Vec2) float64 {
	return math.Hypot(v0[0]-v1[0], v0[1]-v1[1])
}

// vec2segdist returns the distance from v to the segment s-e.
func vec2segdist(v, s, e Vec2) float64 {
	dx, dy := e[0]-s[0], e[1]-s[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return vec2dist(v, s)
	}
	t := ((v[0]-s[0])*dx + (v[1]-s[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return vec2dist(v, Vec2{s[0] + t*dx, s[1] + t*dy})
}

func simplifyPath(v []Vec2, tol float64) []Vec2 {
	if len(v) <= 2 {
		return v
	}
	worst := 0
	worstD := 0.0
	for i := 1; i < len(v)-1; i++ {
		d := vec2segdist(v[i], v[0], v[len(v)-1])
		if d > worstD {
			worst = i
			worstD = d
		}
	}
	if worstD <= tol {
		return []Vec2{v[0], v[len(v)-1]}
	}
	lefts := simplifyPath(v[:worst+1], tol)
	rights := simplifyPath(v[worst:], tol)
	return append(lefts[:len(lefts):len(lefts)], rights[1:]...)
}

// Simplify removes points from paths and polygons, with the guarantee
// that all removed points are within the given tolerance (distance)
// from the new outline. Polygons are never reduced below three
// vertices.
func (ps *Paths) Simplify(tol float64) {
	for i, p := range ps.P {
		ps.P[i].V = simplifyPath(p.V, tol)
	}
	for i, p := range ps.Polygons {
		if len(p.V) <= 3 {
			continue
		}
		closed := append(append([]Vec2(nil), p.V...), p.V[0])
		nv := simplifyPath(closed, tol)
		if len(nv) > 3 {
			ps.Polygons[i].V = nv[:len(nv)-1]
		}
	}
}
