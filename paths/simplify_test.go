package paths

import (
	"reflect"
	"testing"
)

type simplifyTestCase struct {
	desc string
	path Path
	tol  float64
	want []Path
}

func TestSimplify(t *testing.T) {
	p := func(args ...float64) Path {
		if len(args)%2 != 0 {
			t.Fatalf("p helper needs an even number of args, got %v", args)
		}
		path := Path{}
		for i := 0; i < len(args); i += 2 {
			path.V = append(path.V, Vec2{args[i], args[i+1]})
		}
		return path
	}

	cases := []simplifyTestCase{
		{
			desc: "line with slightly displaced midpoint, high tolerance",
			path: p(-1, 0, 0, 0.25, 1.0, 0),
			tol:  0.5,
			want: []Path{p(-1, 0, 1, 0)},
		},
		{
			desc: "line with slightly displaced midpoint, low tolerance",
			path: p(-1, 0, 0, 0.5, 1.0, 0),
			tol:  0.2,
			want: []Path{p(-1, 0, 0, 0.5, 1.0, 0)},
		},
		{
			desc: "square with slightly displaced midpoints, high tolerance",
			path: p(-1, -1, 0, -1.1, 1, -1, 0.9, 0, 1, 1, 0, 1.1, -1, 1, -0.9, 0, -1, -1),
			tol:  0.2,
			want: []Path{p(-1, -1, 1, -1, 1, 1, -1, 1, -1, -1)},
		},
	}
	for _, c := range cases {
		arg := &Paths{
			Bounds: Bounds{Min: Vec2{-1000, -1000}, Max: Vec2{1000, 1000}},
			P:      []Path{c.path},
		}
		ps := &Paths{
			Bounds: arg.Bounds,
			P:      []Path{Path{V: append([]Vec2{}, c.path.V...)}},
		}
		ps.Simplify(c.tol)
		if !reflect.DeepEqual(ps.P, c.want) {
			t.Errorf("%v.Simplify(%v).P = %v, want %v", arg, c.tol, ps.P, c.want)
		}
	}
}

func TestSimplifyPolygons(t *testing.T) {
	ps := &Paths{
		Polygons: []Polygon{
			// A square with nearly collinear midpoints.
			{V: []Vec2{{0, 0}, {5, 0.05}, {10, 0}, {10, 10}, {5, 9.95}, {0, 10}}},
			// Too thin to keep any area: left alone.
			{V: []Vec2{{0, 0}, {10, 0.01}, {20, 0}, {10, -0.01}}},
			{V: []Vec2{{0, 0}, {1, 0}, {0, 1}}},
		},
	}
	ps.Simplify(0.1)
	want := []Polygon{
		{V: []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
		{V: []Vec2{{0, 0}, {10, 0.01}, {20, 0}, {10, -0.01}}},
		{V: []Vec2{{0, 0}, {1, 0}, {0, 1}}},
	}
	if !reflect.DeepEqual(ps.Polygons, want) {
		t.Errorf("Simplify(0.1).Polygons = %v, want %v", ps.Polygons, want)
	}
}

func TestSimplifyShortPaths(t *testing.T) {
	ps := &Paths{P: []Path{{V: []Vec2{{1, 2}}}, {V: []Vec2{{1, 2}, {3, 4}}}}}
	ps.Simplify(100)
	want := []Path{{V: []Vec2{{1, 2}}}, {V: []Vec2{{1, 2}, {3, 4}}}}
	if !reflect.DeepEqual(ps.P, want) {
		t.Errorf("Simplify(100).P = %v, want %v", ps.P, want)
	}
}
