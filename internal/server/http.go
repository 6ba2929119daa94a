package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/paulhankin/rectclip/internal/render"
	"github.com/paulhankin/rectclip/internal/wire"
	"github.com/paulhankin/rectclip/paths"
)

/* ------------------------------ Embeds ------------------------------ */

//go:embed web/index.html
var htmlIndex []byte

/* ------------------------------- HTTP ------------------------------- */

type handler struct {
	settings Settings
}

// NewHandler returns the clip service's HTTP handler.
func NewHandler(s Settings) http.Handler {
	h := &handler{settings: sanitizeSettings(s)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(htmlIndex)
	})
	mux.HandleFunc("POST /api/clip", h.serveClip)
	mux.HandleFunc("POST /api/preview", h.servePreview)
	mux.HandleFunc("GET /ws", h.serveWS)
	return mux
}

// readScene reads a clip request body, either JSON or the plain
// text scene format.
func (h *handler) readScene(w http.ResponseWriter, r *http.Request) (*paths.Scene, error) {
	lim := h.settings.Limits
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, lim.MaxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &requestError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("request body is larger than %d bytes", tooBig.Limit),
			}
		}
		return nil, badRequest("failed to read request body: %v", err)
	}
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "text/plain" {
		sc, err := paths.ParseScene(bytes.NewReader(data))
		if err != nil {
			return nil, badRequest("%v", err)
		}
		if err := checkCounts(lim, len(sc.Segments), len(sc.Polygon.V)); err != nil {
			return nil, err
		}
		return sc, nil
	}
	req, err := decodeClipRequest(data)
	if err != nil {
		return nil, err
	}
	return req.scene(lim)
}

func wantsWire(r *http.Request) bool {
	if r.URL.Query().Get("format") == "pb" {
		return true
	}
	for _, a := range strings.Split(r.Header.Get("Accept"), ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(a)); err == nil && mt == wire.ContentType {
			return true
		}
	}
	return false
}

func (h *handler) serveClip(w http.ResponseWriter, r *http.Request) {
	sc, err := h.readScene(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := sc.Clip()
	if wantsWire(r) {
		w.Header().Set("Content-Type", wire.ContentType)
		if _, err := w.Write(wire.AppendResult(nil, res)); err != nil {
			Logger().Warn("failed to write clip response", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, newClipResponse(res))
}

func (h *handler) servePreview(w http.ResponseWriter, r *http.Request) {
	sc, err := h.readScene(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := sc.Clip()
	var bb bytes.Buffer
	layers := render.Layers{
		Window:   sc.Window,
		Original: sc.Paths(),
		Clipped:  res.Paths(sc.Window),
	}
	if err := render.WritePNG(&bb, layers, h.settings.Preview); err != nil {
		writeError(w, r, fmt.Errorf("failed to render preview: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := bb.WriteTo(w); err != nil {
		Logger().Warn("failed to write preview", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger().Warn("failed to write json response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var re *requestError
	if errors.As(err, &re) {
		status = re.status
		Logger().Debug("rejected request", "path", r.URL.Path, "status", status, "reason", re.msg)
	} else {
		Logger().Warn("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorDTO{Error: err.Error()})
}
