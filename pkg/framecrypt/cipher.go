// Package framecrypt implements the per-frame symmetric cipher used on the
// video channel: AES-256 in ECB mode with PKCS#7 padding.
//
// ECB is required for wire compatibility with the relay, which decrypts
// frames without a per-message IV. The mode is deterministic: encrypting the
// same (plaintext, key) pair twice yields byte-identical ciphertext. That is
// a documented weakness of this protocol, not a property to rely on.
package framecrypt

import (
	"bytes"
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

var (
	// ErrEmptyPlaintext is returned when there is no frame data to encrypt.
	ErrEmptyPlaintext = errors.New("framecrypt: empty plaintext")

	// ErrKeySize is returned for keys of any length other than KeySize.
	ErrKeySize = fmt.Errorf("framecrypt: key must be %d bytes", KeySize)
)

// Encrypt encrypts one encoded frame and returns the full wire payload
// (prefix + key chunk + base64 ciphertext). The caller must drop the frame
// on error rather than abort the session.
func Encrypt(plaintext, key []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}
	if len(key) != KeySize {
		return "", ErrKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("framecrypt: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	for off := 0; off < len(padded); off += aes.BlockSize {
		block.Encrypt(ciphertext[off:off+aes.BlockSize], padded[off:off+aes.BlockSize])
	}

	return wire.EncodeFrame(ciphertext), nil
}

// Decrypt parses a wire payload and recovers the original frame bytes.
func Decrypt(payload string, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	ciphertext, err := wire.DecodeFrame(payload)
	if err != nil {
		return nil, fmt.Errorf("framecrypt: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("framecrypt: ciphertext is not a whole number of blocks")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("framecrypt: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	for off := 0; off < len(ciphertext); off += aes.BlockSize {
		block.Decrypt(plaintext[off:off+aes.BlockSize], ciphertext[off:off+aes.BlockSize])
	}

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// pkcs7Pad always appends at least one padding byte, so arbitrary JPEG
// sizes land on a block boundary without pre-chunking.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("framecrypt: empty padded data")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("framecrypt: invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("framecrypt: invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
