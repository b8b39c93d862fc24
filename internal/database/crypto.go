package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/oauth2"
)

// GetEncryptionKey loads the token-encryption key from the
// EBAY_ENCRYPTION_KEY environment variable. The key must be base64-encoded
// and decode to exactly 32 bytes for AES-256.
func GetEncryptionKey() ([]byte, error) {
	keyStr := os.Getenv("EBAY_ENCRYPTION_KEY")
	if keyStr == "" {
		return nil, errors.New("EBAY_ENCRYPTION_KEY environment variable not set")
	}

	key, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key from base64: %w", err)
	}

	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key length: got %d bytes, expected 32 for AES-256", len(key))
	}

	return key, nil
}

// EncryptSecret encrypts a plaintext string using AES-256-GCM.
// The random nonce is prepended to the ciphertext for storage.
func EncryptSecret(plaintext string, key []byte) ([]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid key length: got %d bytes, expected 32", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return append(nonce, ciphertext...), nil
}

// DecryptSecret decrypts data produced by EncryptSecret.
func DecryptSecret(encrypted []byte, key []byte) (string, error) {
	if len(key) != 32 {
		return "", fmt.Errorf("invalid key length: got %d bytes, expected 32", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(encrypted) < nonceSize {
		return "", errors.New("encrypted data too short - missing nonce")
	}

	plaintext, err := gcm.Open(nil, encrypted[:nonceSize], encrypted[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}

// SaveOAuthToken encrypts and stores an OAuth token for an account.
func (db *DB) SaveOAuthToken(accountID int64, token *oauth2.Token, key []byte) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	encrypted, err := EncryptSecret(string(data), key)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return db.SaveToken(accountID, encrypted)
}

// LoadOAuthToken retrieves and decrypts the stored token for an account;
// nil if no token has been saved.
func (db *DB) LoadOAuthToken(accountID int64, key []byte) (*oauth2.Token, error) {
	encrypted, err := db.LoadToken(accountID)
	if err != nil {
		return nil, err
	}
	if encrypted == nil {
		return nil, nil
	}
	plaintext, err := DecryptSecret(encrypted, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(plaintext), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}
