package streamer

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/pkg/framecrypt"
	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

// registerSessionKey generates a fresh 256-bit key and registers it with the
// relay under the session id. The key is returned only when the relay
// acknowledged it; no frame may be encrypted before that. The raw key is
// never logged.
func registerSessionKey(ctx context.Context, client *http.Client, relayURL, sessionID string) ([]byte, error) {
	key := make([]byte, framecrypt.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, &KeyRegistrationError{Detail: fmt.Sprintf("key generation failed: %v", err)}
	}

	body, err := json.Marshal(wire.SessionKeyRequest{
		SessionID: sessionID,
		AESKey:    wire.KeyToString(key),
	})
	if err != nil {
		return nil, &KeyRegistrationError{Detail: fmt.Sprintf("request encoding failed: %v", err)}
	}

	url := strings.TrimSuffix(relayURL, "/") + "/api/session"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &KeyRegistrationError{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &KeyRegistrationError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(detail))
		if msg == "" {
			msg = resp.Status
		}
		return nil, &KeyRegistrationError{Detail: msg}
	}

	log.Debug().
		Str("session_id", sessionID).
		Int("key_bytes", len(key)).
		Msg("Session key registered with relay")

	return key, nil
}
