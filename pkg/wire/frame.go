// Package wire defines the text payload formats shared by the streamer
// client and the relay server: the encrypted video frame envelope, the chat
// message JSON shape, and the session key registration body.
//
// The frame envelope is a single WebSocket text frame:
//
//	AES_ENC_PREFIX::00000000::<base64 ciphertext>
//
// The middle chunk is an opaque fixed literal required by the relay's
// parser. It is not a key identifier; do not assign it meaning here.
package wire

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// EncryptionPrefix marks a payload as an encrypted frame.
	EncryptionPrefix = "AES_ENC_PREFIX::"

	// KeyChunkPlaceholder is the fixed key-reference chunk carried between
	// the prefix and the ciphertext on every frame.
	KeyChunkPlaceholder = "00000000::"
)

// EncodeFrame assembles the wire payload for one encrypted frame.
func EncodeFrame(ciphertext []byte) string {
	return EncryptionPrefix + KeyChunkPlaceholder + base64.StdEncoding.EncodeToString(ciphertext)
}

// DecodeFrame parses a frame payload back into raw ciphertext bytes.
func DecodeFrame(payload string) ([]byte, error) {
	if !strings.HasPrefix(payload, EncryptionPrefix) {
		return nil, fmt.Errorf("frame payload missing %q prefix", EncryptionPrefix)
	}
	rest := strings.TrimPrefix(payload, EncryptionPrefix)
	if !strings.HasPrefix(rest, KeyChunkPlaceholder) {
		return nil, fmt.Errorf("frame payload missing key chunk")
	}
	rest = strings.TrimPrefix(rest, KeyChunkPlaceholder)

	ciphertext, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("invalid frame ciphertext encoding: %w", err)
	}
	return ciphertext, nil
}
