package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/veildesk/veildesk/pkg/hub"
	"github.com/veildesk/veildesk/pkg/overlay/event"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// options for gorilla connection upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventListener relays hub events to one websocket client.
type eventListener struct {
	hub       *hub.Hub
	c         chan event.MonitorEvent // queue of events from Receive()
	closeOnce sync.Once
}

// newEventListener creates a listener and registers it with the hub, which
// plays back its history buffer first.
func newEventListener(h *hub.Hub) *eventListener {
	el := &eventListener{
		hub: h,
		c:   make(chan event.MonitorEvent, 100),
	}
	h.AddListener(el)
	return el
}

// Receive handles an incoming event from the hub.
func (el *eventListener) Receive(ev event.MonitorEvent) error {
	el.c <- ev
	return nil
}

// wsReader makes sure the websocket client is still connected, discards any
// messages from the client.
func (el *eventListener) wsReader(conn *websocket.Conn) {
	slog := log.With().Str("module", "monitor").Str("proto", "WebSocket").
		Str("remote", conn.RemoteAddr().String()).Logger()
	defer el.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		slog.Debug().Msg("Got pong")
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				// Unexpected close code
				slog.Warn().Err(err).Msg("Socket error")
			} else {
				slog.Debug().Msg("Closing socket")
			}
			break
		}
	}
}

// wsWriter forwards hub events to the websocket client, pinging to verify it
// is still connected.
func (el *eventListener) wsWriter(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		el.Close()
	}()

	// Handle events from hub until eventListener is closed.
	for {
		select {
		case ev, ok := <-el.c:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// eventListener closed, exit
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if conn.WriteJSON(ev) != nil {
				// Write failed
				return
			}
		case <-ticker.C:
			// Send ping
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if conn.WriteMessage(websocket.PingMessage, []byte{}) != nil {
				// Write error
				return
			}
		}
	}
}

// Close removes the listener registration.  Safe to call from both the
// reader and writer goroutines; only the first call deregisters, and queued
// events are left for the writer to drain.
func (el *eventListener) Close() {
	el.closeOnce.Do(func() {
		el.hub.RemoveListener(el)
		close(el.c)
	})
}

// eventsV1 upgrades the connection to a websocket and streams overlay events
// to the client, starting with the hub's history buffer.
func (s *Server) eventsV1(w http.ResponseWriter, req *http.Request) error {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	s.logger.Debug().Str("remote", conn.RemoteAddr().String()).
		Msg("Upgraded to WebSocket")
	// Create, register listener; then interact with conn.
	el := newEventListener(s.hub)
	go el.wsWriter(conn)
	el.wsReader(conn)
	return nil
}
