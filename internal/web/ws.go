package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// hub tracks connected live-reload clients and pushes notifications to all
// of them.
type hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		conns: map[*websocket.Conn]struct{}{},
		upgrader: websocket.Upgrader{
			// The server only binds to loopback.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade", slog.Any("error", err))
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	slog.Debug("live-reload client connected", slog.String("remote", conn.RemoteAddr().String()))

	// Clients never send anything meaningful. Reading drains control frames
	// and detects disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// broadcast sends msg to every connected client, dropping the ones that
// fail to receive it.
func (h *hub) broadcast(msg string) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			slog.Debug("live-reload send failed", slog.Any("error", err))
			h.drop(conn)
		}
	}
}
