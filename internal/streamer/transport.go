package streamer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// videoTransport owns the outbound video WebSocket connection. Sends after
// Close are silent drops: stale frames are worthless, so a closing socket
// must never escalate a send into an error for the pipeline.
type videoTransport struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// wsEndpoint converts the relay's base HTTP URL into a WebSocket URL for
// the given path and query.
func wsEndpoint(relayURL, path string, query url.Values) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL %s: %w", relayURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid relay URL scheme %s", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// dialVideo opens the video socket for the session identity.
func dialVideo(ctx context.Context, relayURL, username string, handshakeTimeout time.Duration) (*videoTransport, error) {
	endpoint, err := wsEndpoint(relayURL, "/stream", url.Values{"username": {username}})
	if err != nil {
		return nil, &SocketError{Op: "dial", Err: err}
	}

	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, &SocketError{Op: "dial", Err: err}
	}

	return &videoTransport{conn: conn}, nil
}

// Send transmits one wire payload as a text frame. Returns (false, nil) when
// the socket is already closed (silent drop) and a non-nil error only for a
// write failure on an open socket, which signals the connection is dead.
func (t *videoTransport) Send(payload string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		return false, nil
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		return false, &SocketError{Op: "send", Err: err}
	}
	return true, nil
}

// watchClose blocks until the relay closes the connection or a read error
// occurs. The relay sends nothing on this channel, so any read completion
// means end of connection.
func (t *videoTransport) watchClose() {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close sends a close frame and releases the connection. Idempotent.
func (t *videoTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		t.closed = true
		return nil
	}
	t.closed = true

	// Best effort close handshake; the connection is torn down regardless.
	_ = t.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	err := t.conn.Close()
	t.conn = nil
	return err
}
