package realtime

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	oaikit "github.com/blue-context/oaikit"
)

// closeGrace bounds the wait for the close frame to be written.
const closeGrace = time.Second

type frame struct {
	data []byte
	err  error
}

// WebSocketTransport carries events as WebSocket text frames.
//
// A reader goroutine owns the read side of the connection and Recv takes
// frames from it under the caller's context.
// Pings from the service are answered by the connection's default handler.
type WebSocketTransport struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	frames    chan frame
	done      chan struct{}
	closeOnce sync.Once
}

// DialWebSocket opens a WebSocket to url with the given handshake headers.
// A nil dialer uses websocket.DefaultDialer.
//
// A handshake rejected with an HTTP status fails with the remote error parsed
// from the response body; any other failure is ErrTransport.
func DialWebSocket(ctx context.Context, url string, header http.Header, dialer *websocket.Dialer) (*WebSocketTransport, error) {
	if url == "" {
		return nil, missingField("realtime URL")
	}
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.StatusCode >= 300 {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
			return nil, oaikit.ParseRemoteError(resp.StatusCode, resp.Header, body)
		}
		return nil, transportError(err)
	}
	return NewWebSocketTransport(conn), nil
}

// NewWebSocketTransport wraps an established connection.
func NewWebSocketTransport(conn *websocket.Conn) *WebSocketTransport {
	t := &WebSocketTransport{
		conn:   conn,
		frames: make(chan frame, 64),
		done:   make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *WebSocketTransport) readLoop() {
	defer close(t.frames)
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case t.frames <- frame{err: readError(err)}:
			case <-t.done:
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		select {
		case t.frames <- frame{data: data}:
		case <-t.done:
			return
		}
	}
}

func readError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	if errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return transportError(err)
}

// Send writes one text frame. The context deadline, if any, becomes the
// write deadline.
func (t *WebSocketTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return transportError(err)
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return transportError(err)
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return transportError(err)
	}
	return nil
}

// Recv returns the next frame, io.EOF after a clean close, or the context
// error.
func (t *WebSocketTransport) Recv(ctx context.Context) ([]byte, error) {
	select {
	case f, ok := <-t.frames:
		if !ok {
			return nil, io.EOF
		}
		return f.data, f.err
	case <-ctx.Done():
		return nil, transportError(ctx.Err())
	}
}

// Close sends a close frame and closes the connection. It is safe to call
// more than once.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
