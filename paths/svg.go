package paths

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/JoshVarga/svgparser"
	"golang.org/x/net/html/charset"
)

// parseNumber parses a finite number.
func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return f, nil
}

// parseLength parses an svg length, ignoring a px unit.
func parseLength(s string) (float64, error) {
	return parseNumber(strings.TrimSuffix(strings.TrimSpace(s), "px"))
}

func parseBounds(e *svgparser.Element) (Bounds, error) {
	if vb := e.Attributes["viewBox"]; vb != "" {
		fs, err := parseFloats(splitNumbers(vb))
		if err != nil {
			return Bounds{}, fmt.Errorf("bad viewBox %q: %w", vb, err)
		}
		if len(fs) != 4 {
			return Bounds{}, fmt.Errorf("viewBox %q should have 4 numbers", vb)
		}
		return Bounds{
			Min: Vec2{fs[0], fs[1]},
			Max: Vec2{fs[0] + fs[2], fs[1] + fs[3]},
		}, nil
	}
	width, werr := parseLength(e.Attributes["width"])
	height, herr := parseLength(e.Attributes["height"])
	if werr != nil {
		return Bounds{}, werr
	}
	if herr != nil {
		return Bounds{}, herr
	}
	return Bounds{
		Max: Vec2{width, height},
	}, nil
}

// attrFloats parses the named attributes of e as numbers.
func attrFloats(e *svgparser.Element, names ...string) ([]float64, error) {
	r := make([]float64, len(names))
	for i, n := range names {
		f, err := parseLength(e.Attributes[n])
		if err != nil {
			return nil, fmt.Errorf("%s: bad %s attribute: %w", e.Name, n, err)
		}
		r[i] = f
	}
	return r, nil
}

func parseLine(ps *Paths, xform *svgXform, e *svgparser.Element) error {
	fs, err := attrFloats(e, "x1", "y1", "x2", "y2")
	if err != nil {
		return err
	}
	ps.move(xform.Apply(Vec2{fs[0], fs[1]}))
	ps.line(xform.Apply(Vec2{fs[2], fs[3]}))
	return nil
}

func parseRect(ps *Paths, xform *svgXform, e *svgparser.Element) error {
	fs, err := attrFloats(e, "x", "y", "width", "height")
	if err != nil {
		return err
	}
	x, y, w, h := fs[0], fs[1], fs[2], fs[3]
	ps.Polygons = append(ps.Polygons, Polygon{V: []Vec2{
		xform.Apply(Vec2{x, y}),
		xform.Apply(Vec2{x + w, y}),
		xform.Apply(Vec2{x + w, y + h}),
		xform.Apply(Vec2{x, y + h}),
	}})
	return nil
}

// splitNumbers splits a list of numbers separated by whitespace
// and/or commas.
func splitNumbers(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parsePoints parses the points attribute of a polyline or polygon.
func parsePoints(xform *svgXform, e *svgparser.Element) ([]Vec2, error) {
	fs, err := parseFloats(splitNumbers(e.Attributes["points"]))
	if err != nil {
		return nil, fmt.Errorf("%s: bad points: %w", e.Name, err)
	}
	if len(fs)%2 != 0 {
		return nil, fmt.Errorf("%s: odd number of coordinates in points", e.Name)
	}
	vs := make([]Vec2, 0, len(fs)/2)
	for i := 0; i < len(fs); i += 2 {
		vs = append(vs, xform.Apply(Vec2{fs[i], fs[i+1]}))
	}
	return vs, nil
}

type xformScannerState int

const (
	xfsName xformScannerState = 1 + iota
	xfsBra
	xfsMaybeComma
	xfsArg
)

func parseFloats(a []string) ([]float64, error) {
	var r []float64
	for _, x := range a {
		f, err := parseNumber(x)
		if err != nil {
			return nil, err
		}
		r = append(r, f)
	}
	return r, nil
}

func svgXformTranslate(x, y float64) *svgXform {
	return &svgXform{
		M: [3][3]float64{
			{1, 0, x},
			{0, 1, y},
			{0, 0, 1},
		},
	}
}

func svgXformScale(x, y float64) *svgXform {
	return &svgXform{
		M: [3][3]float64{
			{x, 0, 0},
			{0, y, 0},
			{0, 0, 1},
		},
	}
}

func parseSingleXform(name string, args []string) (*svgXform, error) {
	switch name {
	case "translate":
		fa, err := parseFloats(args)
		if err != nil {
			return nil, err
		}
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("translate should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, 0)
		}
		return svgXformTranslate(fa[0], fa[1]), nil
	case "scale":
		fa, err := parseFloats(args)
		if err != nil {
			return nil, err
		}
		if len(fa) != 1 && len(fa) != 2 {
			return nil, fmt.Errorf("scale should have one or two parameters: got %s", args)
		}
		if len(fa) == 1 {
			fa = append(fa, fa[0])
		}
		return svgXformScale(fa[0], fa[1]), nil
	default:
		return nil, fmt.Errorf("unknown transform function %q", name)
	}
}

func parseSVGXForm(x string) (*svgXform, error) {
	var s scanner.Scanner
	xf := svgIdentity
	s.Init(strings.NewReader(x))
	state := xfsName
	fname := ""
	var args []string
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch state {
		case xfsName:
			if tok != scanner.Ident {
				return nil, fmt.Errorf("failed to parse transform: expected transform name, but got %q", s.TokenText())
			}
			fname = s.TokenText()
			state = xfsBra
		case xfsBra:
			if tok != '(' {
				return nil, fmt.Errorf("failed to parse transform: expected (, but got %q", s.TokenText())
			}
			state = xfsArg
		case xfsMaybeComma:
			if tok == ',' {
				continue
			}
			fallthrough
		case xfsArg:
			if tok == ')' {
				newxform, err := parseSingleXform(fname, args)
				if err != nil {
					return nil, err
				}
				xf = xf.Compose(newxform)
				state = xfsName
				args = nil
			} else if tok == '-' {
				args = append(args, "-")
			} else if tok == scanner.Float || tok == scanner.Int {
				if n := len(args); n > 0 && args[n-1] == "-" {
					args[n-1] += s.TokenText()
				} else {
					args = append(args, s.TokenText())
				}
				state = xfsMaybeComma
			} else {
				return nil, fmt.Errorf("unexpected token %q parsing transform %q", s.TokenText(), x)
			}
		}
	}
	if state != xfsName {
		return nil, fmt.Errorf("failed to parse transform: %q", x)
	}
	return xf, nil
}

// pathTokens splits svg path data into command letters and numbers.
// A sign, or a second decimal point, starts a new number.
func pathTokens(d string) []string {
	var toks []string
	var cur strings.Builder
	hasDot := false // cur has a decimal point or an exponent
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
		hasDot = false
	}
	prev := ' '
	for _, r := range d {
		switch {
		case r == ',' || unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			toks = append(toks, string(r))
		case (r == '-' || r == '+') && prev != 'e' && prev != 'E':
			flush()
			cur.WriteRune(r)
		case r == '.' && hasDot:
			flush()
			cur.WriteRune(r)
			hasDot = true
		default:
			cur.WriteRune(r)
			if r == '.' || r == 'e' || r == 'E' {
				hasDot = true
			}
		}
		prev = r
	}
	flush()
	return toks
}

// parsePath reads the M, L, H, V and Z commands (and their relative
// forms) of a path. A subpath closed with Z becomes a polygon.
func parsePath(ps *Paths, xf *svgXform, e *svgparser.Element) error {
	var cmd rune
	var cur, start Vec2 // untransformed
	var args []float64
	open := false
	emit := func(v Vec2, newPath bool) {
		if newPath {
			ps.P = append(ps.P, Path{})
			open = true
		}
		ps.P[len(ps.P)-1].V = append(ps.P[len(ps.P)-1].V, xf.Apply(v))
	}
	// lineTo draws to v. After a Z the next subpath starts where the
	// closed one did.
	lineTo := func(v Vec2) {
		if !open {
			emit(start, true)
		}
		emit(v, false)
	}
	for _, tok := range pathTokens(e.Attributes["d"]) {
		if r := rune(tok[0]); len(tok) == 1 && unicode.IsLetter(r) {
			if len(args) != 0 {
				return fmt.Errorf("got stray component in path before %s", tok)
			}
			switch r {
			case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v':
				cmd = r
			case 'Z', 'z':
				if open {
					ps.close()
					open = false
				}
				cur = start
				cmd = 0
			default:
				return fmt.Errorf("unsupported path command %q", tok)
			}
			continue
		}
		f, err := parseNumber(tok)
		if err != nil {
			return err
		}
		args = append(args, f)
		rel := unicode.IsLower(cmd)
		switch unicode.ToUpper(cmd) {
		case 'M', 'L':
			if len(args) < 2 {
				continue
			}
			v := Vec2{args[0], args[1]}
			if rel {
				v = Vec2{cur[0] + v[0], cur[1] + v[1]}
			}
			if unicode.ToUpper(cmd) == 'M' {
				start = v
				emit(v, true)
				// further pairs after a moveto are implicit linetos.
				if rel {
					cmd = 'l'
				} else {
					cmd = 'L'
				}
			} else {
				lineTo(v)
			}
			cur = v
		case 'H', 'V':
			v := cur
			axis := 0
			if unicode.ToUpper(cmd) == 'V' {
				axis = 1
			}
			if rel {
				v[axis] += args[0]
			} else {
				v[axis] = args[0]
			}
			lineTo(v)
			cur = v
		default:
			return fmt.Errorf("path data must start with a command")
		}
		args = args[:0]
	}
	if len(args) != 0 {
		return fmt.Errorf("got stray component in path")
	}
	return nil
}

type svgXform struct {
	M [3][3]float64
}

func (xf *svgXform) Compose(xf2 *svgXform) *svgXform {
	var a svgXform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				a.M[i][k] += xf.M[i][j] * xf2.M[j][k]
			}
		}
	}
	return &a
}

func (xf *svgXform) Apply(v Vec2) Vec2 {
	x := [3]float64{v[0], v[1], 1.0}
	var r [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i] += xf.M[i][j] * x[j]
		}
	}
	return Vec2{r[0] / r[2], r[1] / r[2]}
}

var svgIdentity = &svgXform{
	M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
}

func parsePaths(p *Paths, xform *svgXform, e *svgparser.Element) error {
	for _, c := range e.Children {
		if c.Name == "defs" {
			continue
		}
		exf, err := parseSVGXForm(c.Attributes["transform"])
		if err != nil {
			return err
		}
		xf := xform.Compose(exf)
		switch c.Name {
		case "g":
			err = parsePaths(p, xf, c)
		case "path":
			err = parsePath(p, xf, c)
		case "line":
			err = parseLine(p, xf, c)
		case "rect":
			err = parseRect(p, xf, c)
		case "polyline", "polygon":
			var vs []Vec2
			vs, err = parsePoints(xf, c)
			if err != nil {
				break
			}
			if c.Name == "polygon" {
				p.Polygons = append(p.Polygons, Polygon{V: vs})
			} else if len(vs) > 0 {
				p.P = append(p.P, Path{V: vs})
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown child node type %q\n", c.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FromSVG parses an SVG file, extracting paths and polygons.
// This provides only limited SVG parsing support, and
// will fail or produce incorrect results if the SVG file
// uses features that it doesn't understand.
func FromSVG(r io.Reader) (p *Paths, rerr error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	elt, err := svgparser.DecodeFirst(decoder)
	if err != nil {
		return nil, err
	}
	if err := elt.Decode(decoder); err != nil && err != io.EOF {
		return nil, err
	}
	bs, err := parseBounds(elt)
	if err != nil {
		return nil, err
	}
	p = &Paths{Bounds: bs}
	return p, parsePaths(p, svgIdentity, elt)
}

var (
	svgh = `<svg height="%g" width="%g" viewBox="%g %g %g %g" version="1.1" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`
)

// SVG writes an SVG file that contains black strokes along the paths,
// and the polygons filled in grey.
func (ps *Paths) SVG(w io.Writer) error {
	var werr error
	bi := bufio.NewWriter(w)
	wr := func(f string, args ...interface{}) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bi, f, args...)
	}
	bw, bh := ps.Bounds.Max[0]-ps.Bounds.Min[0], ps.Bounds.Max[1]-ps.Bounds.Min[1]
	wr(svgh, bh, bw, ps.Bounds.Min[0], ps.Bounds.Min[1], bw, bh)
	wr("\n")
	if len(ps.Polygons) > 0 {
		wr("<g fill=\"lightgrey\" stroke=\"black\" stroke-width=\"0.1\">\n")
		for _, p := range ps.Polygons {
			if len(p.V) == 0 {
				continue
			}
			wr(`<polygon points="`)
			for i, v := range p.V {
				if i > 0 {
					wr(" ")
				}
				wr("%g,%g", v[0], v[1])
			}
			wr("\"/>\n")
		}
		wr("</g>\n")
	}
	wr("<g fill=\"none\" stroke=\"black\" stroke-width=\"0.1\">\n")
	for _, p := range ps.P {
		if len(p.V) == 0 {
			continue
		}
		wr(`<path d="`)
		for i, v := range p.V {
			if i == 0 {
				wr("M %g, %g", v[0], v[1])
			} else {
				wr(" %g, %g", v[0], v[1])
			}
		}
		wr("\"/>\n")
	}
	wr("</g>")
	wr("</svg>")
	if werr == nil {
		werr = bi.Flush()
	}
	return werr
}
