// Package crypto manages the Kalshi API signing key: loading the RSA
// private key from config and encrypting it at rest with a passphrase.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	// saltLen is the random salt length in bytes.
	saltLen = 16
	// aesKeyLen is the derived AES-256 key length.
	aesKeyLen = 32
	// currentVersion is the encrypted-key JSON schema version.
	currentVersion = 1
)

// ErrWrongPassphrase is returned when an encrypted key fails to decrypt,
// which almost always means the passphrase is wrong.
var ErrWrongPassphrase = errors.New("crypto: decryption failed (wrong passphrase?)")

// encryptedKeyJSON is the on-disk format for an encrypted private key.
type encryptedKeyJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // base64 standard encoding
	Nonce      string `json:"nonce"`      // base64 standard encoding
	Ciphertext string `json:"ciphertext"` // base64 standard encoding
}

// KeyConfig carries the information LoadKeyPEM needs to resolve the RSA
// signing key. Populate the fields from environment variables or a config
// file.
type KeyConfig struct {
	// PrivateKeyPEM is the PEM-encoded key itself. If non-empty,
	// LoadKeyPEM returns it directly.
	PrivateKeyPEM string

	// PrivateKeyPath is the path to a key file, either plaintext PEM or a
	// JSON blob produced by EncryptKeyPEM.
	PrivateKeyPath string

	// Passphrase decrypts the file at PrivateKeyPath when it is encrypted.
	Passphrase string
}

// validatePEM checks that data holds at least one PRIVATE KEY PEM block.
func validatePEM(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil {
		return errors.New("crypto: no PEM block found")
	}
	if !strings.Contains(block.Type, "PRIVATE KEY") {
		return fmt.Errorf("crypto: unexpected PEM block type %q", block.Type)
	}
	return nil
}

// EncryptKeyPEM encrypts a PEM-encoded private key with a passphrase using
// PBKDF2-HMAC-SHA256 key derivation and AES-256-GCM authenticated
// encryption. It returns the JSON blob suitable for writing to disk.
func EncryptKeyPEM(keyPEM []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("crypto: passphrase must not be empty")
	}
	if err := validatePEM(keyPEM); err != nil {
		return nil, err
	}

	// Generate random salt and derive AES key.
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generating salt: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	// AES-256-GCM encrypt.
	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, keyPEM, nil)

	out := encryptedKeyJSON{
		Version:    currentVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}

	return json.MarshalIndent(out, "", "  ")
}

// DecryptKeyPEM decrypts a JSON blob produced by EncryptKeyPEM, returning
// the PEM-encoded private key.
func DecryptKeyPEM(encryptedJSON []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("crypto: passphrase must not be empty")
	}

	var stored encryptedKeyJSON
	if err := json.Unmarshal(encryptedJSON, &stored); err != nil {
		return nil, fmt.Errorf("crypto: parsing encrypted key JSON: %w", err)
	}
	if stored.Version != currentVersion {
		return nil, fmt.Errorf("crypto: unsupported version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return nil, fmt.Errorf("crypto: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return nil, fmt.Errorf("crypto: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("crypto: decoding ciphertext: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	return plaintext, nil
}

// LoadKeyPEM resolves the RSA signing key from the provided configuration.
//
// Resolution order:
//  1. If PrivateKeyPEM is set, return it.
//  2. If PrivateKeyPath is set, read the file. A file starting with a PEM
//     header is returned as-is; anything else is treated as an encrypted
//     blob and decrypted with Passphrase.
//  3. Otherwise, return an error.
func LoadKeyPEM(cfg KeyConfig) ([]byte, error) {
	// 1. Inline key takes precedence.
	if cfg.PrivateKeyPEM != "" {
		keyPEM := []byte(cfg.PrivateKeyPEM)
		if err := validatePEM(keyPEM); err != nil {
			return nil, err
		}
		return keyPEM, nil
	}

	// 2. Key file, plaintext or encrypted.
	if cfg.PrivateKeyPath != "" {
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("crypto: reading key file: %w", err)
		}
		if strings.HasPrefix(strings.TrimSpace(string(data)), "-----BEGIN") {
			if err := validatePEM(data); err != nil {
				return nil, err
			}
			return data, nil
		}
		return DecryptKeyPEM(data, cfg.Passphrase)
	}

	return nil, errors.New("crypto: no private key source configured (set PrivateKeyPEM or PrivateKeyPath)")
}
