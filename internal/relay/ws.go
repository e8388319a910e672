package relay

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// The dashboard is served from a separate origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketHandler returns an http.HandlerFunc that upgrades the request and
// writes every topic event as one text frame. Inbound frames are discarded.
func WebSocketHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := eventFilter(r)

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("relay: websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
			return
		}
		defer func() {
			if err := conn.Close(); err != nil {
				slog.Debug("relay: websocket close failed", "error", err)
			}
		}()

		done := make(chan struct{})
		go readUntilClosed(conn, done)

		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()

		slog.Debug("relay: websocket subscriber attached", "subscriber_id", id, "remote", r.RemoteAddr)
		for {
			select {
			case <-done:
				return
			case <-r.Context().Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			case evt, ok := <-ch:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down"),
						time.Now().Add(wsWriteWait))
					return
				}
				if filter != nil && !filter[evt.Name] {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, evt.Data); err != nil {
					slog.Debug("relay: websocket write failed", "subscriber_id", id, "error", err)
					return
				}
			}
		}
	}
}

func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
