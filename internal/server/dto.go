package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/paulhankin/rectclip/paths"
)

type clipRequestDTO struct {
	Segments [][]float64 `json:"segments"`
	Polygon  [][]float64 `json:"polygon"`
	Window   []float64   `json:"window"`
}

type clipResponseDTO struct {
	ClippedSegments [][4]float64 `json:"clipped_segments"`
	ClippedPolygon  [][2]float64 `json:"clipped_polygon"`
}

type errorDTO struct {
	Error string `json:"error"`
}

// requestError is a problem with a request, and the status to
// report it with.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) *requestError {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func finite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// decodeClipRequest parses a JSON clip request. An empty body, null
// or {} all count as no body.
func decodeClipRequest(data []byte) (*clipRequestDTO, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, badRequest("Expected JSON body.")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) == 0 {
		return nil, badRequest("Expected JSON body.")
	}
	var req clipRequestDTO
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, badRequest("malformed clip request: %v", err)
	}
	return &req, nil
}

// scene validates the request against the limits and converts it to
// a scene.
func (req *clipRequestDTO) scene(lim Limits) (*paths.Scene, error) {
	if req.Window == nil {
		return nil, badRequest("No window provided.")
	}
	if len(req.Window) != 4 {
		return nil, badRequest("window has %d numbers, want 4", len(req.Window))
	}
	if !finite(req.Window...) {
		return nil, badRequest("window must be finite")
	}
	sc := &paths.Scene{
		Window: paths.Rect(req.Window[0], req.Window[1], req.Window[2], req.Window[3]),
	}
	if err := checkCounts(lim, len(req.Segments), len(req.Polygon)); err != nil {
		return nil, err
	}
	for i, s := range req.Segments {
		if len(s) != 4 {
			return nil, badRequest("segment %d has %d numbers, want 4", i, len(s))
		}
		if !finite(s...) {
			return nil, badRequest("segment %d must be finite", i)
		}
		sc.Segments = append(sc.Segments, paths.Segment{{s[0], s[1]}, {s[2], s[3]}})
	}
	for i, v := range req.Polygon {
		if len(v) != 2 {
			return nil, badRequest("polygon vertex %d has %d numbers, want 2", i, len(v))
		}
		if !finite(v...) {
			return nil, badRequest("polygon vertex %d must be finite", i)
		}
		sc.Polygon.V = append(sc.Polygon.V, paths.Vec2{v[0], v[1]})
	}
	return sc, nil
}

func checkCounts(lim Limits, segments, vertices int) error {
	if segments > lim.MaxSegments {
		return &requestError{
			status: http.StatusRequestEntityTooLarge,
			msg:    fmt.Sprintf("%d segments is more than the limit of %d", segments, lim.MaxSegments),
		}
	}
	if vertices > lim.MaxPolygonVertices {
		return &requestError{
			status: http.StatusRequestEntityTooLarge,
			msg:    fmt.Sprintf("%d polygon vertices is more than the limit of %d", vertices, lim.MaxPolygonVertices),
		}
	}
	return nil
}

func newClipResponse(r paths.Result) clipResponseDTO {
	resp := clipResponseDTO{
		ClippedSegments: make([][4]float64, 0, len(r.Segments)),
		ClippedPolygon:  make([][2]float64, 0, len(r.Polygon.V)),
	}
	for _, s := range r.Segments {
		resp.ClippedSegments = append(resp.ClippedSegments, [4]float64{s[0][0], s[0][1], s[1][0], s[1][1]})
	}
	for _, v := range r.Polygon.V {
		resp.ClippedPolygon = append(resp.ClippedPolygon, [2]float64(v))
	}
	return resp
}
