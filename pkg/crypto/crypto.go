package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts a credential for storage. The wire form is
// base64(nonce || ciphertext).
func Seal(plaintext, key string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func Open(sealed, key string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("malformed sealed credential: %w", err)
	}
	if len(data) < aead.NonceSize() {
		return "", fmt.Errorf("sealed credential too short")
	}
	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed credential: %w", err)
	}
	return string(plaintext), nil
}

func newAEAD(key string) (cipher.AEAD, error) {
	return chacha20poly1305.New(deriveKey(key))
}

// deriveKey expects a base64-encoded 32-byte key. A raw string is padded
// as a dev fallback so local setups work without generating one.
func deriveKey(key string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil && len(decoded) == chacha20poly1305.KeySize {
		return decoded
	}
	padded := make([]byte, chacha20poly1305.KeySize)
	copy(padded, key)
	return padded
}
