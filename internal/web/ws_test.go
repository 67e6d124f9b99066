package web

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
)

func TestLiveReloadBroadcast(t *testing.T) {
	t.Parallel()

	server := NewServer(dirdiff.New(t.TempDir(), t.TempDir()))
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The upgrade handler registers the connection before returning, but
	// give the server a moment on slow machines.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		server.hub.mu.Lock()
		n := len(server.hub.conns)
		server.hub.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	server.hub.broadcast("reload")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "reload" {
		t.Fatalf("expected reload message, got %q", msg)
	}
}

func TestBroadcastDropsClosedConnections(t *testing.T) {
	t.Parallel()

	server := NewServer(dirdiff.New(t.TempDir(), t.TempDir()))
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	// The server notices the close through its read loop.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		server.hub.mu.Lock()
		n := len(server.hub.conns)
		server.hub.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("closed connection was not dropped")
}
