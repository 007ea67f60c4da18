package relay

import (
	"sync"

	"github.com/TheGoumble/secure-streaming/internal/relay/metrics"
)

// StreamRegistry keeps the latest decrypted frame per active streamer.
// Latest-frame-wins: viewers always see the newest frame and older frames
// are discarded unserved, matching the latest-effort delivery of the
// ingest side.
type StreamRegistry struct {
	mu      sync.RWMutex
	streams map[string][]byte
}

func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{streams: make(map[string][]byte)}
}

// Update replaces the latest frame for a streamer.
func (r *StreamRegistry) Update(username string, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[username]; !exists {
		metrics.ActiveStreams.Inc()
	}
	r.streams[username] = frame
}

// Latest returns the newest frame for a streamer, or false when the stream
// is not active.
func (r *StreamRegistry) Latest(username string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	frame, ok := r.streams[username]
	return frame, ok
}

// Active reports whether a streamer is currently publishing.
func (r *StreamRegistry) Active(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.streams[username]
	return ok
}

// Remove ends a stream; pending viewer loops observe the inactive state and
// terminate.
func (r *StreamRegistry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[username]; exists {
		metrics.ActiveStreams.Dec()
	}
	delete(r.streams, username)
}
