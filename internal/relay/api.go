package relay

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/relay/metrics"
	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

// handleRegisterSession implements POST /api/session: the key handshake a
// streamer must complete before its first frame. The key string is decoded
// byte-per-character; anything but an exact-size key is rejected.
func (s *Server) handleRegisterSession(w http.ResponseWriter, r *http.Request) {
	var req wire.SessionKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.KeyRegistrationsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		metrics.KeyRegistrationsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "sessionId required", http.StatusBadRequest)
		return
	}

	key, err := wire.KeyFromString(req.AESKey)
	if err != nil {
		metrics.KeyRegistrationsTotal.WithLabelValues("bad_key").Inc()
		http.Error(w, "invalid key encoding", http.StatusBadRequest)
		return
	}
	if err := s.keys.Register(req.SessionID, key); err != nil {
		metrics.KeyRegistrationsTotal.WithLabelValues("bad_key").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics.KeyRegistrationsTotal.WithLabelValues("ok").Inc()
	log.Info().Str("session_id", req.SessionID).Msg("Registered key for session")
	w.WriteHeader(http.StatusOK)
}

// handleGetSessionKey implements GET /api/session/{sessionId}/key, a debug
// surface that returns the registered key string. The relay owns decryption,
// so this does not widen the trust boundary, but it is unauthenticated and
// must not be exposed outside the relay host.
func (s *Server) handleGetSessionKey(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	key, ok := s.keys.Get(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wire.SessionKeyResponse{
		SessionID: sessionID,
		AESKey:    wire.KeyToString(key),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
