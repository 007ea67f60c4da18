// Package chat implements the text chat client. Chat shares the session's
// identity namespace (a room id equals a streamer's username) but is fully
// independent of the video path: no ordering is guaranteed between the two.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

// ErrNotOpen is returned by Send when the socket is not currently open.
// Callers must not queue unsent messages; chat is latest-effort like video.
var ErrNotOpen = errors.New("chat: channel not open")

// Channel is one participant's connection to a chat room.
type Channel struct {
	roomID   string
	identity string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	messages chan wire.ChatMessage
}

// Open connects to the relay's chat endpoint for (roomID, identity). On
// success one local System message announcing the connection is already
// queued on Messages, ahead of anything relay-originated. It is not sent to
// other participants.
func Open(ctx context.Context, relayURL, roomID, identity string) (*Channel, error) {
	if roomID == "" || identity == "" {
		return nil, errors.New("chat: roomID and identity must not be empty")
	}

	endpoint, err := chatEndpoint(relayURL, roomID, identity)
	if err != nil {
		return nil, err
	}

	dialer := &websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to connect to %s: %w", endpoint, err)
	}

	c := &Channel{
		roomID:   roomID,
		identity: identity,
		conn:     conn,
		messages: make(chan wire.ChatMessage, 64),
	}

	c.messages <- wire.ChatMessage{
		Sender:    wire.SystemSender,
		Text:      fmt.Sprintf("Connected to chat room: %s", roomID),
		Timestamp: time.Now(),
	}

	log.Info().
		Str("room_id", roomID).
		Str("identity", identity).
		Msg("Chat channel connected")

	go c.readLoop()
	return c, nil
}

func chatEndpoint(relayURL, roomID, identity string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("chat: invalid relay URL %s: %w", relayURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("chat: invalid relay URL scheme %s", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/chat"
	u.RawQuery = url.Values{"roomId": {roomID}, "username": {identity}}.Encode()
	return u.String(), nil
}

// Messages returns the ordered inbound stream. The channel is closed when
// the connection ends.
func (c *Channel) Messages() <-chan wire.ChatMessage {
	return c.messages
}

// Send transmits one message with this channel's identity and the current
// time. Rejected without queueing when the socket is not open.
func (c *Channel) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("chat: message text must not be empty")
	}

	msg := wire.ChatMessage{
		Sender:    c.identity,
		Text:      text,
		Timestamp: time.Now(),
	}
	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("chat: encode failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		log.Warn().
			Str("room_id", c.roomID).
			Msg("Chat socket not open, message dropped")
		return ErrNotOpen
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("chat: send failed: %w", err)
	}
	return nil
}

// Close releases the socket. Idempotent; no automatic retry or reconnect.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	return c.conn.Close()
}

func (c *Channel) readLoop() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()
			if !wasClosed {
				log.Debug().Err(err).Str("room_id", c.roomID).Msg("Chat connection ended")
			}
			return
		}

		msg, err := wire.ParseChatMessage(data)
		if err != nil {
			// Malformed payloads are dropped, never fatal to the channel.
			log.Warn().Err(err).Str("room_id", c.roomID).Msg("Discarding unparseable chat payload")
			continue
		}
		c.messages <- msg
	}
}
