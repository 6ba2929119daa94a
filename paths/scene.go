package paths

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// A Scene is a clip window together with the segments and the
// (optional) polygon to clip against it.
type Scene struct {
	Window   Bounds
	Segments []Segment
	Polygon  Polygon
}

// Result is what's left of a Scene after clipping.
type Result struct {
	Segments []Segment
	Polygon  Polygon
}

// Clip clips the scene's segments and polygon to its window.
// Segments entirely outside the window are dropped. The polygon
// is empty if the scene has none.
func (sc *Scene) Clip() Result {
	r := Result{
		Segments: ClipSegments(sc.Segments, sc.Window),
		Polygon:  Polygon{V: []Vec2{}},
	}
	if len(sc.Polygon.V) > 0 {
		r.Polygon = ClipPolygon(sc.Polygon, sc.Window)
	}
	return r
}

// Paths returns the scene's geometry as paths: one two-vertex path
// per segment, and the polygon if there is one. The bounds are the
// window.
func (sc *Scene) Paths() *Paths {
	ps := &Paths{Bounds: sc.Window}
	for _, s := range sc.Segments {
		ps.P = append(ps.P, Path{V: []Vec2{s[0], s[1]}})
	}
	if len(sc.Polygon.V) > 0 {
		ps.Polygons = append(ps.Polygons, Polygon{V: append([]Vec2(nil), sc.Polygon.V...)})
	}
	return ps
}

// Paths returns the clipped geometry as paths, with the given bounds.
func (r Result) Paths(b Bounds) *Paths {
	sc := Scene{Window: b, Segments: r.Segments, Polygon: r.Polygon}
	return sc.Paths()
}

// ParseScene reads a scene in the plain text format:
//
//	n
//	x1 y1 x2 y2    (n times)
//	m              (optional)
//	x y            (m times)
//	xmin ymin xmax ymax
//
// Numbers are separated by any whitespace. If exactly four numbers
// follow the segments, the scene has no polygon.
func ParseScene(r io.Reader) (*Scene, error) {
	var toks []string
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	for s.Scan() {
		toks = append(toks, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	pos := 0
	next := func() (float64, error) {
		if pos >= len(toks) {
			return 0, fmt.Errorf("scene ends early after %d numbers", pos)
		}
		f, err := strconv.ParseFloat(toks[pos], 64)
		if err != nil {
			return 0, fmt.Errorf("scene number %d: %w", pos+1, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("scene number %d: %q is not finite", pos+1, toks[pos])
		}
		pos++
		return f, nil
	}
	count := func(what string) (int, error) {
		f, err := next()
		if err != nil {
			return 0, err
		}
		if f < 0 || f != math.Trunc(f) {
			return 0, fmt.Errorf("%s count %v is not a non-negative integer", what, f)
		}
		n := int(f)
		if n > len(toks) {
			return 0, fmt.Errorf("%s count %d is more than the scene could hold", what, n)
		}
		return n, nil
	}
	vec := func() (Vec2, error) {
		x, err := next()
		if err != nil {
			return Vec2{}, err
		}
		y, err := next()
		return Vec2{x, y}, err
	}

	sc := &Scene{}
	n, err := count("segment")
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		a, err := vec()
		if err != nil {
			return nil, err
		}
		b, err := vec()
		if err != nil {
			return nil, err
		}
		sc.Segments = append(sc.Segments, Segment{a, b})
	}
	if len(toks)-pos != 4 {
		m, err := count("polygon vertex")
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			v, err := vec()
			if err != nil {
				return nil, err
			}
			sc.Polygon.V = append(sc.Polygon.V, v)
		}
	}
	min, err := vec()
	if err != nil {
		return nil, err
	}
	max, err := vec()
	if err != nil {
		return nil, err
	}
	sc.Window = Bounds{Min: min, Max: max}
	if pos != len(toks) {
		return nil, fmt.Errorf("scene has %d unexpected trailing numbers", len(toks)-pos)
	}
	return sc, nil
}

// WriteText writes the scene in the format read by ParseScene.
func (sc *Scene) WriteText(w io.Writer) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}
	g := func(x float64) string {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	wr("%d\n", len(sc.Segments))
	for _, s := range sc.Segments {
		wr("%s %s %s %s\n", g(s[0][0]), g(s[0][1]), g(s[1][0]), g(s[1][1]))
	}
	if len(sc.Polygon.V) > 0 {
		wr("%d\n", len(sc.Polygon.V))
		for _, v := range sc.Polygon.V {
			wr("%s %s\n", g(v[0]), g(v[1]))
		}
	}
	wr("%s %s %s %s\n", g(sc.Window.Min[0]), g(sc.Window.Min[1]), g(sc.Window.Max[0]), g(sc.Window.Max[1]))
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}
