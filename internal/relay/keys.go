package relay

import (
	"sync"

	"github.com/TheGoumble/secure-streaming/pkg/framecrypt"
)

// KeyRegistry holds the symmetric key registered for each active session.
// Keys live only in memory for the lifetime of the session; re-registering
// a session id replaces its key, invalidating the previous association.
type KeyRegistry struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{keys: make(map[string][]byte)}
}

// Register stores the key for a session id. The key must be exactly the
// cipher's fixed size.
func (r *KeyRegistry) Register(sessionID string, key []byte) error {
	if len(key) != framecrypt.KeySize {
		return framecrypt.ErrKeySize
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(key))
	copy(stored, key)
	r.keys[sessionID] = stored
	return nil
}

// Get returns the key registered for a session id, or false.
func (r *KeyRegistry) Get(sessionID string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[sessionID]
	return key, ok
}

// Remove drops a session's key.
func (r *KeyRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, sessionID)
}
