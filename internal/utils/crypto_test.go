package utils

import (
	"bytes"
	"testing"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestTokenCipherRoundTrip(t *testing.T) {
	cipher, err := NewTokenCipher(testKey(0x11))
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}
	enc, err := cipher.Encrypt("strava-access-token")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc == "strava-access-token" {
		t.Fatal("ciphertext equals plaintext")
	}
	dec, err := cipher.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if dec != "strava-access-token" {
		t.Errorf("Decrypt = %q, want original token", dec)
	}
}

func TestTokenCipherNoncesDiffer(t *testing.T) {
	cipher, _ := NewTokenCipher(testKey(0x22))
	a, _ := cipher.Encrypt("same-token")
	b, _ := cipher.Encrypt("same-token")
	if a == b {
		t.Error("two encryptions of the same token produced identical ciphertext")
	}
}

func TestTokenCipherWrongKey(t *testing.T) {
	enc1, _ := NewTokenCipher(testKey(0x33))
	enc2, _ := NewTokenCipher(testKey(0x44))
	ct, _ := enc1.Encrypt("secret")
	if _, err := enc2.Decrypt(ct); err == nil {
		t.Error("expected decryption with the wrong key to fail")
	}
}

func TestTokenCipherTruncatedCiphertext(t *testing.T) {
	cipher, _ := NewTokenCipher(testKey(0x55))
	if _, err := cipher.Decrypt("AAAA"); err != ErrCiphertextTooShort {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestTokenCipherBadKeyLength(t *testing.T) {
	if _, err := NewTokenCipher([]byte("short")); err == nil {
		t.Error("expected an error for a short key")
	}
}
