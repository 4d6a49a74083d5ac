package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/scrypt"
)

// Encrypted secrets file parameters.
const (
	secretsFileName = "secrets.json.enc"
	saltSize        = 16
	nonceSize       = 12
	scryptN         = 32768 // 2^15
	scryptR         = 8
	scryptP         = 1
	keySize         = 32 // AES-256
)

//nolint:gochecknoglobals // Intentional in-memory secrets store
var (
	secrets   map[string]string
	secretsMu sync.RWMutex
)

// GetSecret returns a decrypted secret by name, or "" when absent.
// Callers fall back to the environment themselves.
func GetSecret(name string) string {
	secretsMu.RLock()
	defer secretsMu.RUnlock()
	return secrets[name]
}

// SetSecret stores a secret value in memory. SaveSecrets persists it.
func SetSecret(name, value string) {
	secretsMu.Lock()
	defer secretsMu.Unlock()
	if secrets == nil {
		secrets = make(map[string]string)
	}
	secrets[name] = value
}

// SecretNames returns the names (not values) of loaded secrets.
func SecretNames() []string {
	secretsMu.RLock()
	defer secretsMu.RUnlock()
	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	return names
}

func secretsPath(dataDir string) string {
	return filepath.Join(dataDir, secretsFileName)
}

// SecretsFileExists reports whether an encrypted secrets file is present.
func SecretsFileExists(dataDir string) bool {
	_, err := os.Stat(secretsPath(dataDir))
	return err == nil
}

// SaveSecrets encrypts the in-memory secrets with a password-derived key and
// writes them to the data dir with 0600 permissions.
func SaveSecrets(dataDir, password string) error {
	secretsMu.RLock()
	plain, err := json.Marshal(secrets)
	secretsMu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return fmt.Errorf("failed to derive encryption key: %w", err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// File layout: salt || nonce || ciphertext.
	ciphertext := gcm.Seal(nil, nonce, plain, nil)
	blob := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(secretsPath(dataDir), blob, 0o600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	return nil
}

// LoadSecrets decrypts the secrets file into memory.
func LoadSecrets(dataDir, password string) error {
	blob, err := os.ReadFile(secretsPath(dataDir))
	if err != nil {
		return fmt.Errorf("failed to read secrets file: %w", err)
	}
	if len(blob) < saltSize+nonceSize {
		return fmt.Errorf("secrets file is truncated")
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	ciphertext := blob[saltSize+nonceSize:]

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return fmt.Errorf("failed to derive decryption key: %w", err)
	}
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to decrypt secrets (wrong password?): %w", err)
	}

	var loaded map[string]string
	if err := json.Unmarshal(plain, &loaded); err != nil {
		return fmt.Errorf("failed to parse decrypted secrets: %w", err)
	}

	secretsMu.Lock()
	secrets = loaded
	secretsMu.Unlock()
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
