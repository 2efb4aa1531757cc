package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	keyPEM := testKeyPEM(t)

	blob, err := EncryptKeyPEM(keyPEM, "hunter2")
	if err != nil {
		t.Fatalf("EncryptKeyPEM() error = %v", err)
	}
	if bytes.Contains(blob, keyPEM) {
		t.Fatal("encrypted blob contains plaintext key")
	}

	got, err := DecryptKeyPEM(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptKeyPEM() error = %v", err)
	}
	if !bytes.Equal(got, keyPEM) {
		t.Error("decrypted key does not match original")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	blob, err := EncryptKeyPEM(testKeyPEM(t), "correct")
	if err != nil {
		t.Fatalf("EncryptKeyPEM() error = %v", err)
	}

	_, err = DecryptKeyPEM(blob, "wrong")
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("DecryptKeyPEM() error = %v, want ErrWrongPassphrase", err)
	}
}

func TestEncryptRejectsEmptyPassphrase(t *testing.T) {
	if _, err := EncryptKeyPEM(testKeyPEM(t), ""); err == nil {
		t.Error("EncryptKeyPEM() accepted empty passphrase")
	}
}

func TestEncryptRejectsNonPEM(t *testing.T) {
	if _, err := EncryptKeyPEM([]byte("not a key"), "pw"); err == nil {
		t.Error("EncryptKeyPEM() accepted non-PEM input")
	}
}

func TestLoadKeyPEMInline(t *testing.T) {
	keyPEM := testKeyPEM(t)

	got, err := LoadKeyPEM(KeyConfig{PrivateKeyPEM: string(keyPEM)})
	if err != nil {
		t.Fatalf("LoadKeyPEM() error = %v", err)
	}
	if !bytes.Equal(got, keyPEM) {
		t.Error("inline key does not round-trip")
	}
}

func TestLoadKeyPEMPlaintextFile(t *testing.T) {
	keyPEM := testKeyPEM(t)
	path := filepath.Join(t.TempDir(), "kalshi.pem")
	if err := os.WriteFile(path, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKeyPEM(KeyConfig{PrivateKeyPath: path})
	if err != nil {
		t.Fatalf("LoadKeyPEM() error = %v", err)
	}
	if !bytes.Equal(got, keyPEM) {
		t.Error("file key does not round-trip")
	}
}

func TestLoadKeyPEMEncryptedFile(t *testing.T) {
	keyPEM := testKeyPEM(t)
	blob, err := EncryptKeyPEM(keyPEM, "pw")
	if err != nil {
		t.Fatalf("EncryptKeyPEM() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "kalshi.enc.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKeyPEM(KeyConfig{PrivateKeyPath: path, Passphrase: "pw"})
	if err != nil {
		t.Fatalf("LoadKeyPEM() error = %v", err)
	}
	if !bytes.Equal(got, keyPEM) {
		t.Error("encrypted file key does not round-trip")
	}

	if _, err := LoadKeyPEM(KeyConfig{PrivateKeyPath: path, Passphrase: "nope"}); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("LoadKeyPEM() with bad passphrase error = %v, want ErrWrongPassphrase", err)
	}
}

func TestLoadKeyPEMNoSource(t *testing.T) {
	if _, err := LoadKeyPEM(KeyConfig{}); err == nil {
		t.Error("LoadKeyPEM() with empty config did not fail")
	}
}
