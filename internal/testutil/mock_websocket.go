package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// WebSocketServer is an httptest server that upgrades every request and
// hands the connection to a handler. It records the upgrade request headers.
type WebSocketServer struct {
	*httptest.Server

	mu       sync.Mutex
	header   http.Header
	rawQuery string
}

// NewWebSocketServer starts a server whose handler runs once per connection.
// The server is closed automatically when the test ends.
//
// Example:
//
//	srv := testutil.NewWebSocketServer(t, func(conn *websocket.Conn) {
//	    conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.created"}`))
//	})
//	url := srv.URL() // ws://127.0.0.1:port
func NewWebSocketServer(t *testing.T, handler func(conn *websocket.Conn)) *WebSocketServer {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	ws := &WebSocketServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		ws.header = r.Header.Clone()
		ws.rawQuery = r.URL.RawQuery
		ws.mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("websocket upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(ws.Server.Close)
	return ws
}

// URL returns the ws:// address of the server.
func (s *WebSocketServer) URL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// RequestHeader returns the headers of the most recent upgrade request.
func (s *WebSocketServer) RequestHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// RawQuery returns the query string of the most recent upgrade request.
func (s *WebSocketServer) RawQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawQuery
}
