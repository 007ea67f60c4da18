package framecrypt

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	// Sizes straddle block boundaries, including an exact multiple of 16.
	for _, size := range []int{1, 15, 16, 17, 1000, 4096, 100000} {
		plaintext := make([]byte, size)
		_, err := rand.Read(plaintext)
		require.NoError(t, err)

		payload, err := Encrypt(plaintext, key)
		require.NoError(t, err, "size %d", size)
		assert.True(t, strings.HasPrefix(payload, wire.EncryptionPrefix))

		decrypted, err := Decrypt(payload, key)
		require.NoError(t, err, "size %d", size)
		assert.True(t, bytes.Equal(plaintext, decrypted), "size %d", size)
	}
}

func TestEncryptIsDeterministic(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("the same frame twice")

	first, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	second, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	// ECB has no per-message randomness. Documented trade-off.
	assert.Equal(t, first, second)
}

func TestEncrypt_EmptyPlaintext(t *testing.T) {
	_, err := Encrypt(nil, testKey(t))
	assert.ErrorIs(t, err, ErrEmptyPlaintext)
}

func TestEncrypt_BadKeySizes(t *testing.T) {
	for _, size := range []int{0, 16, 24, 31, 33, 64} {
		_, err := Encrypt([]byte("frame"), make([]byte, size))
		assert.ErrorIs(t, err, ErrKeySize, "key size %d", size)
	}
}

func TestDecrypt_WrongKeyFailsPadding(t *testing.T) {
	payload, err := Encrypt([]byte("secret frame data"), testKey(t))
	require.NoError(t, err)

	// A different key almost certainly produces garbage padding.
	_, err = Decrypt(payload, testKey(t))
	assert.Error(t, err)
}

func TestDecrypt_TruncatedCiphertext(t *testing.T) {
	key := testKey(t)
	_, err := Decrypt(wire.EncodeFrame([]byte{0x01, 0x02, 0x03}), key)
	assert.Error(t, err)

	_, err = Decrypt(wire.EncodeFrame(nil), key)
	assert.Error(t, err)
}
