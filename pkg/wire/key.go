package wire

import "fmt"

// SessionKeyRequest is the JSON body for POST /api/session.
// AESKey carries the raw key bytes encoded one byte per character.
type SessionKeyRequest struct {
	SessionID string `json:"sessionId"`
	AESKey    string `json:"aesKey"`
}

// SessionKeyResponse is the JSON body for GET /api/session/{sessionId}/key.
type SessionKeyResponse struct {
	SessionID string `json:"sessionId"`
	AESKey    string `json:"aesKey"`
}

// KeyToString encodes raw key bytes as an ISO-8859-1 string: each byte maps
// to the code point of the same value. This matches the relay's decoding and
// survives JSON transport without multi-byte expansion on the wire contract
// level (JSON itself escapes, but the logical string is byte-per-rune).
func KeyToString(key []byte) string {
	runes := make([]rune, len(key))
	for i, b := range key {
		runes[i] = rune(b)
	}
	return string(runes)
}

// KeyFromString decodes an ISO-8859-1 key string back to raw bytes. Code
// points above 0xFF cannot come from KeyToString and are rejected.
func KeyFromString(s string) ([]byte, error) {
	key := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("invalid key string: code point %U out of byte range", r)
		}
		key = append(key, byte(r))
	}
	return key, nil
}
