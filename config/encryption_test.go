package config

import (
	"bytes"
	"testing"
)

func TestEncryptionRoundTrip(t *testing.T) {
	mgr := NewEncryptionManager(EncryptionPassphrase, "correct horse battery staple")
	if err := mgr.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	plaintext := []byte("sk-a-very-secret-key")

	encrypted, err := mgr.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Equal(encrypted, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := mgr.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptionWrongPassphrase(t *testing.T) {
	mgr := NewEncryptionManager(EncryptionPassphrase, "first passphrase")
	if err := mgr.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	encrypted, err := mgr.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	other := NewEncryptionManager(EncryptionPassphrase, "second passphrase")
	if err := other.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	if _, err := other.Decrypt(encrypted); err == nil {
		t.Error("expected decryption with the wrong passphrase to fail")
	}
}

func TestEncryptionNonePassesThrough(t *testing.T) {
	mgr := NewEncryptionManager(EncryptionNone, "")
	if err := mgr.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	data := []byte("untouched")
	out, err := mgr.Encrypt(data)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("EncryptionNone modified data: got %q", out)
	}
}

func TestEncryptionRequiresPassphrase(t *testing.T) {
	mgr := NewEncryptionManager(EncryptionPassphrase, "")
	if err := mgr.Initialize(); err == nil {
		t.Error("expected Initialize to fail without a passphrase")
	}
}
