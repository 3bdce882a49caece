package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADRoundTrip(t *testing.T) {
	t.Parallel()

	aead, err := NewAEAD(randomKey(t))
	require.NoError(t, err)

	plaintext := []byte("mcp_deadbeefdeadbeefdeadbeefdead")
	blob, err := aead.Encrypt(plaintext)
	require.NoError(t, err)

	decrypted, err := aead.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAEADTamperedCiphertextFails(t *testing.T) {
	t.Parallel()

	aead, err := NewAEAD(randomKey(t))
	require.NoError(t, err)

	blob, err := aead.Encrypt([]byte("raw key"))
	require.NoError(t, err)

	for _, idx := range []int{0, len(blob) - 1} {
		tampered := append([]byte(nil), blob...)
		tampered[idx] ^= 0xFF
		_, err := aead.Decrypt(tampered)
		assert.Error(t, err)
	}
}

func TestAEADRejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewAEAD([]byte("too-short"))
	assert.ErrorIs(t, err, ErrInvalidEncryptionKey)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("mcp_abc123")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "mcp_abc123"))
	assert.False(t, VerifyPassword(hash, "mcp_other"))
}
