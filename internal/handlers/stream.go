package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/realtime"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream pushes hub events as server-sent events.
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	if a.hub == nil {
		httpx.JSONError(w, http.StatusNotFound, "realtime disabled", nil)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.JSONError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}
	// the stream outlives the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	client := a.hub.Register()
	defer a.hub.Unregister(client.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: %s\ndata: {\"clientID\":%q}\n\n", realtime.TypeConnected, client.ID)
	flusher.Flush()

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-client.Events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, e.Data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// ws pushes hub events as JSON messages. Incoming messages are only
// read to notice the peer going away.
func (a *API) ws(w http.ResponseWriter, r *http.Request) {
	if a.hub == nil {
		httpx.JSONError(w, http.StatusNotFound, "realtime disabled", nil)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := a.hub.Register()
	defer a.hub.Unregister(client.ID)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello := realtime.Event{Type: realtime.TypeConnected, Data: []byte(fmt.Sprintf("{\"clientID\":%q}", client.ID))}
	if err := a.writeWS(conn, hello); err != nil {
		return
	}

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case e, ok := <-client.Events:
			if !ok {
				return
			}
			if err := a.writeWS(conn, e); err != nil {
				a.log.Debug("websocket write failed", zap.String("client", client.ID), zap.Error(err))
				return
			}
		case <-heartbeat.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (a *API) writeWS(conn *websocket.Conn, e realtime.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(e)
}
