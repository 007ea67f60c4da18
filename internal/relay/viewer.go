package relay

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/relay/metrics"
)

const mjpegBoundary = "--frameboundary"

// handleView serves a stream to a viewer as multipart motion-JPEG. The
// viewer's identity is not authenticated; stream names share the same
// namespace as streamer usernames and chat room ids.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if !s.streams.Active(username) {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	logger := log.With().Str("session_id", username).Logger()
	logger.Info().Msg("Viewer connected")
	metrics.ViewerConnections.Inc()
	defer metrics.ViewerConnections.Dec()

	ticker := time.NewTicker(s.cfg.ViewerFrameInterval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Int("frames", frames).Msg("Viewer disconnected")
			return
		case <-ticker.C:
		}

		frame, active := s.streams.Latest(username)
		if !active {
			logger.Info().Int("frames", frames).Msg("Stream ended, closing viewer")
			return
		}
		if len(frame) == 0 {
			// Registered but no frames yet; keep the connection open.
			continue
		}

		if _, err := fmt.Fprintf(w, "\r\n%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(frame)); err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		flusher.Flush()
		frames++
	}
}
