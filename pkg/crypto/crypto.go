package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrEmptyCiphertext is returned when decrypting an empty string
var ErrEmptyCiphertext = errors.New("empty ciphertext")

// DeriveKey stretches a configured secret into a 32-byte AES key bound to
// purpose, so one SECRET_KEY can seal unrelated kinds of data.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret must not be empty")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Sealer encrypts short strings with AES-256-GCM under a derived key.
// Output is hex(nonce || ciphertext).
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer for the given secret and purpose
func NewSealer(secret, purpose string) (*Sealer, error) {
	key, err := DeriveKey(secret, purpose)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// EncryptString seals str and returns it hex encoded
func (s *Sealer) EncryptString(str string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	ciphertext := s.aead.Seal(nonce, nonce, []byte(str), nil)
	return hex.EncodeToString(ciphertext), nil
}

// DecryptFromHexString opens a value produced by EncryptString
func (s *Sealer) DecryptFromHexString(str string) (string, error) {
	if str == "" {
		return "", ErrEmptyCiphertext
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open ciphertext: %w", err)
	}
	return string(plaintext), nil
}
