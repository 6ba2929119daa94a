package svgclip

import (
	"fmt"
	"io"
	"math"

	"github.com/paulhankin/rectclip/paths"
	"github.com/rustyoz/svg"
)

// Number of line segments used for curves and circles.
const (
	curveSteps  = 16
	circleSteps = 64
)

// builder collects drawing instructions into paths and polygons.
type builder struct {
	ps  paths.Paths
	cur []paths.Vec2
}

func (b *builder) flush() {
	if len(b.cur) > 1 {
		b.ps.P = append(b.ps.P, paths.Path{V: b.cur})
	}
	b.cur = nil
}

func (b *builder) move(v paths.Vec2) {
	b.flush()
	b.cur = []paths.Vec2{v}
}

func (b *builder) line(v paths.Vec2) {
	if len(b.cur) == 0 {
		b.cur = []paths.Vec2{v}
		return
	}
	b.cur = append(b.cur, v)
}

// cubic flattens a cubic bezier from the current point.
func (b *builder) cubic(c1, c2, t paths.Vec2) {
	if len(b.cur) == 0 {
		b.line(t)
		return
	}
	p0 := b.cur[len(b.cur)-1]
	for i := 1; i <= curveSteps; i++ {
		s := float64(i) / curveSteps
		u := 1 - s
		w0, w1, w2, w3 := u*u*u, 3*u*u*s, 3*u*s*s, s*s*s
		b.line(paths.Vec2{
			w0*p0[0] + w1*c1[0] + w2*c2[0] + w3*t[0],
			w0*p0[1] + w1*c1[1] + w2*c2[1] + w3*t[1],
		})
	}
}

func (b *builder) close() {
	v := b.cur
	b.cur = nil
	if len(v) > 1 && v[0] == v[len(v)-1] {
		v = v[:len(v)-1]
	}
	if len(v) > 0 {
		b.ps.Polygons = append(b.ps.Polygons, paths.Polygon{V: v})
	}
}

func (b *builder) circle(c paths.Vec2, r float64) {
	b.flush()
	v := make([]paths.Vec2, circleSteps)
	for i := range v {
		a := 2 * math.Pi * float64(i) / circleSteps
		v[i] = paths.Vec2{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)}
	}
	b.ps.Polygons = append(b.ps.Polygons, paths.Polygon{V: v})
}

func vec(t *svg.Tuple) (paths.Vec2, error) {
	if t == nil {
		return paths.Vec2{}, fmt.Errorf("instruction is missing a point")
	}
	return paths.Vec2{t[0], t[1]}, nil
}

func (b *builder) add(di *svg.DrawingInstruction) error {
	switch di.Kind {
	case svg.MoveInstruction:
		v, err := vec(di.M)
		if err != nil {
			return err
		}
		b.move(v)
	case svg.LineInstruction:
		v, err := vec(di.M)
		if err != nil {
			return err
		}
		b.line(v)
	case svg.CurveInstruction:
		cp := di.CurvePoints
		if cp == nil {
			return fmt.Errorf("curve has no control points")
		}
		c1, err := vec(cp.C1)
		if err != nil {
			return err
		}
		c2, err := vec(cp.C2)
		if err != nil {
			return err
		}
		t, err := vec(cp.T)
		if err != nil {
			return err
		}
		b.cubic(c1, c2, t)
	case svg.CloseInstruction:
		b.close()
	case svg.CircleInstruction:
		c, err := vec(di.M)
		if err != nil {
			return err
		}
		if di.Radius == nil {
			return fmt.Errorf("circle has no radius")
		}
		b.circle(c, *di.Radius)
	}
	return nil
}

// loadInstructions reads an svg through its drawing instructions,
// which covers curves and circles as well as straight edges. Curves
// are flattened. The bounds are the extent of the drawing.
func loadInstructions(r io.Reader) (*paths.Paths, error) {
	s, err := svg.ParseSvgFromReader(r, "", 1.0)
	if err != nil {
		return nil, err
	}
	var b builder
	dis, errs := s.ParseDrawingInstructions()
	var firstErr error
	for dis != nil || errs != nil {
		select {
		case di, ok := <-dis:
			if !ok {
				dis = nil
				continue
			}
			if err := b.add(di); err != nil && firstErr == nil {
				firstErr = err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("svg drawing instructions: %w", firstErr)
	}
	b.flush()
	ps := &b.ps
	ps.TightenBounds()
	return ps, nil
}
