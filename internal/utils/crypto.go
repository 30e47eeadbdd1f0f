package utils

import (
	"crypto/aes"      // AES block cipher
	"crypto/cipher"   // GCM mode
	"crypto/rand"     // Nonce generation
	"encoding/base64" // Ciphertext encoding for storage
	"errors"
	"io"
)

// ErrCiphertextTooShort is returned when stored ciphertext is truncated
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// TokenCipher encrypts and decrypts fitness provider tokens with AES-256-GCM
type TokenCipher struct {
	aead cipher.AEAD // Authenticated cipher
}

// NewTokenCipher builds a TokenCipher from a 32-byte key
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	block, err := aes.NewCipher(key) // Create AES cipher
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block) // Wrap in GCM
	if err != nil {
		return nil, err
	}
	return &TokenCipher{aead: aead}, nil
}

// Encrypt seals a plaintext token and returns nonce||ciphertext, base64 encoded
func (t *TokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, t.aead.NonceSize()) // Fresh random nonce per token
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := t.aead.Seal(nil, nonce, []byte(plaintext), nil)    // Seal the token
	return base64.RawStdEncoding.EncodeToString(append(nonce, ct...)), nil // Encode for the DB column
}

// Decrypt reverses Encrypt
func (t *TokenCipher) Decrypt(encoded string) (string, error) {
	buf, err := base64.RawStdEncoding.DecodeString(encoded) // Decode storage form
	if err != nil {
		return "", err
	}
	ns := t.aead.NonceSize()
	if len(buf) < ns {
		return "", ErrCiphertextTooShort // Truncated or corrupt column
	}
	pt, err := t.aead.Open(nil, buf[:ns], buf[ns:], nil) // Authenticate and open
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
