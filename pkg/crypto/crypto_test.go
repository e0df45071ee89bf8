package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := randomKey(t)

	sealed, err := Seal("ya29.a0AfB_secret_token", key)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "ya29.a0AfB_secret_token", plain)
}

func TestSealProducesFreshNonces(t *testing.T) {
	key := randomKey(t)

	first, err := Seal("same input", key)
	require.NoError(t, err)
	second, err := Seal("same input", key)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := Seal("token", randomKey(t))
	require.NoError(t, err)

	_, err = Open(sealed, randomKey(t))
	assert.Error(t, err)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key := randomKey(t)
	sealed, err := Seal("token", key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = Open(tampered, key)
	assert.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	key := randomKey(t)

	_, err := Open("not base64!!", key)
	assert.Error(t, err)

	_, err = Open(base64.StdEncoding.EncodeToString([]byte("short")), key)
	assert.Error(t, err)
}

func TestDevFallbackKey(t *testing.T) {
	// Raw (non base64-32) keys are padded so local setups work
	sealed, err := Seal("token", "dev-password")
	require.NoError(t, err)

	plain, err := Open(sealed, "dev-password")
	require.NoError(t, err)
	assert.Equal(t, "token", plain)
}
