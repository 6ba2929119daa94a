// Package wire encodes clip results in the protobuf wire format,
// without generated code. The schema is:
//
//	message Segment {
//	  repeated double coords = 1 [packed = true]; // x1 y1 x2 y2
//	}
//	message ClipResponse {
//	  repeated Segment segments = 1;
//	  repeated double polygon = 2 [packed = true]; // x0 y0 x1 y1 ...
//	}
package wire

import (
	"fmt"
	"math"

	"github.com/paulhankin/rectclip/paths"
	"google.golang.org/protobuf/encoding/protowire"
)

// ContentType is the media type of an encoded ClipResponse.
const ContentType = "application/x-protobuf"

const (
	fieldSegments protowire.Number = 1
	fieldPolygon  protowire.Number = 2
	fieldCoords   protowire.Number = 1
)

func appendPacked(b []byte, num protowire.Number, fs []float64) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(8*len(fs)))
	for _, f := range fs {
		b = protowire.AppendFixed64(b, math.Float64bits(f))
	}
	return b
}

// AppendResult appends the encoding of r to b.
func AppendResult(b []byte, r paths.Result) []byte {
	var seg []byte
	for _, s := range r.Segments {
		seg = appendPacked(seg[:0], fieldCoords, []float64{s[0][0], s[0][1], s[1][0], s[1][1]})
		b = protowire.AppendTag(b, fieldSegments, protowire.BytesType)
		b = protowire.AppendBytes(b, seg)
	}
	if len(r.Polygon.V) > 0 {
		fs := make([]float64, 0, 2*len(r.Polygon.V))
		for _, v := range r.Polygon.V {
			fs = append(fs, v[0], v[1])
		}
		b = appendPacked(b, fieldPolygon, fs)
	}
	return b
}

// consumeDoubles reads repeated double values, packed or not, and
// appends them to fs. It returns the number of bytes read.
func consumeDoubles(b []byte, typ protowire.Type, fs []float64) ([]float64, int, error) {
	switch typ {
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		return append(fs, math.Float64frombits(v)), n, nil
	case protowire.BytesType:
		p, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, 0, protowire.ParseError(n)
		}
		if len(p)%8 != 0 {
			return nil, 0, fmt.Errorf("packed doubles have %d bytes, not a multiple of 8", len(p))
		}
		for len(p) > 0 {
			v, m := protowire.ConsumeFixed64(p)
			if m < 0 {
				return nil, 0, protowire.ParseError(m)
			}
			fs = append(fs, math.Float64frombits(v))
			p = p[m:]
		}
		return fs, n, nil
	default:
		return nil, 0, fmt.Errorf("doubles can't have wire type %d", typ)
	}
}

func decodeSegment(b []byte) (paths.Segment, error) {
	var fs []float64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return paths.Segment{}, protowire.ParseError(n)
		}
		b = b[n:]
		if num == fieldCoords {
			var err error
			fs, n, err = consumeDoubles(b, typ, fs)
			if err != nil {
				return paths.Segment{}, fmt.Errorf("segment coords: %w", err)
			}
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return paths.Segment{}, protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	if len(fs) != 4 {
		return paths.Segment{}, fmt.Errorf("segment has %d coordinates, want 4", len(fs))
	}
	return paths.Segment{{fs[0], fs[1]}, {fs[2], fs[3]}}, nil
}

// DecodeResult decodes a ClipResponse. Unknown fields are skipped.
// The returned slices are never nil.
func DecodeResult(b []byte) (paths.Result, error) {
	r := paths.Result{
		Segments: []paths.Segment{},
		Polygon:  paths.Polygon{V: []paths.Vec2{}},
	}
	var poly []float64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return paths.Result{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldSegments && typ == protowire.BytesType:
			p, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return paths.Result{}, protowire.ParseError(m)
			}
			s, err := decodeSegment(p)
			if err != nil {
				return paths.Result{}, fmt.Errorf("segment %d: %w", len(r.Segments), err)
			}
			r.Segments = append(r.Segments, s)
			n = m
		case num == fieldPolygon:
			var err error
			poly, n, err = consumeDoubles(b, typ, poly)
			if err != nil {
				return paths.Result{}, fmt.Errorf("polygon: %w", err)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return paths.Result{}, protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	if len(poly)%2 != 0 {
		return paths.Result{}, fmt.Errorf("polygon has an odd number (%d) of coordinates", len(poly))
	}
	for i := 0; i < len(poly); i += 2 {
		r.Polygon.V = append(r.Polygon.V, paths.Vec2{poly[i], poly[i+1]})
	}
	return r, nil
}
