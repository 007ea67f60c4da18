package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// SystemSender is the sender name used for locally synthesized status
// messages. The relay never originates messages with this sender.
const SystemSender = "System"

// ChatMessage is one chat payload, exchanged as a JSON text frame on the
// chat WebSocket. Timestamp serializes as an RFC 3339 instant.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseChatMessage decodes one inbound chat payload.
func ParseChatMessage(data []byte) (ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChatMessage{}, fmt.Errorf("malformed chat payload: %w", err)
	}
	if msg.Sender == "" || msg.Text == "" {
		return ChatMessage{}, fmt.Errorf("chat payload missing sender or text")
	}
	return msg, nil
}

// Encode serializes the message for transmission.
func (m ChatMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}
