package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/paulhankin/rectclip/internal/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sendError sends err to the client as a JSON text frame.
func sendError(conn *websocket.Conn, err error) error {
	data, merr := json.Marshal(errorDTO{Error: err.Error()})
	if merr != nil {
		return merr
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// serveWS clips each JSON request received on the socket and replies
// with the wire encoding of the result as a binary frame.
func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an error status.
		Logger().Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.settings.Limits.MaxBodyBytes)
	log := Logger().With("remote", r.RemoteAddr)
	log.Debug("websocket connected")

	var buf []byte
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read failed", "err", err)
			}
			break
		}
		buf, err = h.clipMessage(buf[:0], data)
		if err != nil {
			log.Debug("rejected websocket request", "reason", err)
			err = sendError(conn, err)
		} else {
			err = conn.WriteMessage(websocket.BinaryMessage, buf)
		}
		if err != nil {
			log.Warn("websocket write failed", "err", err)
			break
		}
	}
	log.Debug("websocket disconnected")
}

// clipMessage clips the JSON request in data and appends the wire
// encoding of the result to b.
func (h *handler) clipMessage(b, data []byte) ([]byte, error) {
	req, err := decodeClipRequest(data)
	if err != nil {
		return b, err
	}
	sc, err := req.scene(h.settings.Limits)
	if err != nil {
		return b, err
	}
	return wire.AppendResult(b, sc.Clip()), nil
}
