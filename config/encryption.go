package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// EncryptionMethod defines how data is encrypted
type EncryptionMethod string

const (
	EncryptionNone       EncryptionMethod = "none"
	EncryptionPassphrase EncryptionMethod = "passphrase"
)

// scrypt context salt. Deterministic derivation: the same passphrase always
// produces the same AES key, so previously stored secrets stay readable.
var keyDerivationSalt = []byte("aide-credential-cipher-v1")

// EncryptionManager provides general-purpose encryption for stored secrets
// (the API key column in the assistant store). It is reusable across storage
// systems: anything that can hold bytes can hold its output.
type EncryptionManager struct {
	method     EncryptionMethod
	passphrase string
	aesKey     []byte
}

// NewEncryptionManager creates a new encryption manager
func NewEncryptionManager(method EncryptionMethod, passphrase string) *EncryptionManager {
	return &EncryptionManager{
		method:     method,
		passphrase: passphrase,
	}
}

// Initialize derives the AES key from the passphrase. For EncryptionNone it
// is a no-op.
func (e *EncryptionManager) Initialize() error {
	switch e.method {
	case EncryptionNone:
		return nil

	case EncryptionPassphrase:
		if e.passphrase == "" {
			return fmt.Errorf("passphrase encryption selected but no passphrase provided")
		}
		key, err := scrypt.Key([]byte(e.passphrase), keyDerivationSalt, 1<<15, 8, 1, 32)
		if err != nil {
			return fmt.Errorf("failed to derive encryption key: %w", err)
		}
		e.aesKey = key
		return nil

	default:
		return fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// Encrypt encrypts data using the configured method
// Returns encrypted data or original data if method is EncryptionNone
func (e *EncryptionManager) Encrypt(plaintext []byte) ([]byte, error) {
	switch e.method {
	case EncryptionNone:
		return plaintext, nil

	case EncryptionPassphrase:
		if e.aesKey == nil {
			return nil, fmt.Errorf("encryption manager not initialized")
		}
		return encryptAESGCM(plaintext, e.aesKey)

	default:
		return nil, fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// Decrypt decrypts data using the configured method
// Returns decrypted data or original data if method is EncryptionNone
func (e *EncryptionManager) Decrypt(ciphertext []byte) ([]byte, error) {
	switch e.method {
	case EncryptionNone:
		return ciphertext, nil

	case EncryptionPassphrase:
		if e.aesKey == nil {
			return nil, fmt.Errorf("encryption manager not initialized")
		}
		return decryptAESGCM(ciphertext, e.aesKey)

	default:
		return nil, fmt.Errorf("unknown encryption method: %s", e.method)
	}
}

// GetMethod returns the current encryption method
func (e *EncryptionManager) GetMethod() EncryptionMethod {
	return e.method
}

// encryptAESGCM encrypts data using AES-256-GCM
// Format: [nonce (12 bytes)][ciphertext + tag]
func encryptAESGCM(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return ciphertext, nil
}

// decryptAESGCM decrypts data using AES-256-GCM
// Expects format: [nonce (12 bytes)][ciphertext + tag]
func decryptAESGCM(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce := ciphertext[:nonceSize]
	ciphertextData := ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertextData, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}
