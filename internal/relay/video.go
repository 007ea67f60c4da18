package relay

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/relay/metrics"
	"github.com/TheGoumble/secure-streaming/pkg/framecrypt"
)

// handleStream terminates a streamer's video WebSocket: each inbound text
// frame is decrypted with the session's registered key and stored as the
// stream's latest frame. A frame that fails to decrypt closes the
// connection; the streamer and relay no longer agree on the key, so every
// following frame would fail too.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Video WebSocket upgrade failed")
		return
	}

	if s.cfg.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.ReadLimit)
	}

	connID := uuid.NewString()
	logger := log.With().
		Str("session_id", username).
		Str("conn_id", connID).
		Logger()
	logger.Info().Msg("Stream established")

	defer func() {
		conn.Close()
		s.streams.Remove(username)
		logger.Info().Msg("Stream stopped and removed")
	}()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Stream connection ended unexpectedly")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		key, ok := s.keys.Get(username)
		if !ok {
			metrics.FramesReceivedTotal.WithLabelValues("no_key").Inc()
			logger.Warn().Msg("Frame received with no registered session key, closing")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no session key registered"))
			return
		}

		frame, err := framecrypt.Decrypt(string(payload), key)
		if err != nil {
			metrics.FramesReceivedTotal.WithLabelValues("decrypt_error").Inc()
			logger.Warn().Err(err).Msg("Frame decryption failed, closing stream")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "decryption error"))
			return
		}

		metrics.FramesReceivedTotal.WithLabelValues("ok").Inc()
		metrics.FrameBytesTotal.Add(float64(len(frame)))
		s.streams.Update(username, frame)
	}
}
