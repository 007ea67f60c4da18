package relay

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/relay/metrics"
)

// chatHub groups chat connections by room id and broadcasts each inbound
// payload verbatim to every open member of the room, sender included.
// Ordering is per-connection FIFO; no global order across participants.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*chatMember]struct{}
}

type chatMember struct {
	username string

	mu   sync.Mutex // serializes writes to conn
	conn *websocket.Conn
}

func newChatHub() *chatHub {
	return &chatHub{rooms: make(map[string]map[*chatMember]struct{})}
}

func (h *chatHub) join(roomID string, m *chatMember) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*chatMember]struct{})
		h.rooms[roomID] = room
	}
	room[m] = struct{}{}
}

func (h *chatHub) leave(roomID string, m *chatMember) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		delete(room, m)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *chatHub) broadcast(roomID string, payload []byte) {
	h.mu.RLock()
	members := make([]*chatMember, 0, len(h.rooms[roomID]))
	for m := range h.rooms[roomID] {
		members = append(members, m)
	}
	h.mu.RUnlock()

	for _, m := range members {
		m.mu.Lock()
		err := m.conn.WriteMessage(websocket.TextMessage, payload)
		m.mu.Unlock()
		if err != nil {
			log.Debug().
				Err(err).
				Str("room_id", roomID).
				Str("username", m.username).
				Msg("Failed to deliver chat message to member")
		}
	}
	metrics.ChatMessagesTotal.Inc()
}

// memberCount is used by tests and the status endpoint.
func (h *chatHub) memberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// handleChat terminates one participant's chat WebSocket.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	username := r.URL.Query().Get("username")
	if roomID == "" || username == "" {
		http.Error(w, "roomId and username required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Chat WebSocket upgrade failed")
		return
	}

	member := &chatMember{username: username, conn: conn}
	s.chat.join(roomID, member)
	metrics.ChatConnections.Inc()

	logger := log.With().
		Str("room_id", roomID).
		Str("username", username).
		Str("conn_id", uuid.NewString()).
		Logger()
	logger.Info().Msg("Chat connected")

	defer func() {
		s.chat.leave(roomID, member)
		metrics.ChatConnections.Dec()
		conn.Close()
		logger.Info().Msg("Chat disconnected")
	}()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		// Broadcast the raw JSON to the room; the relay does not rewrite
		// or validate message contents.
		s.chat.broadcast(roomID, payload)
	}
}
