package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required app key length, 256 bits for AES-256.
	KeySize = 32

	// keyInfo provides domain separation for HKDF so the same app key can
	// never be reused for a different purpose with identical output.
	keyInfo = "steward.tenant-credential.v1"
)

// Keyring encrypts and decrypts per-tenant database credentials with keys
// derived from a single application key. Each tenant id acts as the HKDF
// salt, so ciphertext produced for one tenant never decrypts for another.
type Keyring struct {
	appKey []byte
}

// NewKeyring validates the app key and returns a ready keyring.
func NewKeyring(appKey []byte) (*Keyring, error) {
	if len(appKey) != KeySize {
		return nil, ErrInvalidAppKey
	}
	k := &Keyring{appKey: make([]byte, KeySize)}
	copy(k.appKey, appKey)
	return k, nil
}

// EncryptCredential encrypts plaintext under the tenant-scoped key and
// returns base64 ciphertext with the GCM nonce prepended.
func (k *Keyring) EncryptCredential(tenantID, plaintext string) (string, error) {
	if tenantID == "" {
		return "", ErrEmptyTenantID
	}

	key, err := k.deriveKey(tenantID)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrEncryptFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptFailed, err)
	}

	ciphertext := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptCredential reverses EncryptCredential. Tampered ciphertext, a wrong
// app key, or a mismatched tenant id all return ErrDecryptFailed; callers
// treat that as fatal misconfiguration, not something to retry.
func (k *Keyring) DecryptCredential(tenantID, ciphertext string) (string, error) {
	if tenantID == "" {
		return "", ErrEmptyTenantID
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	key, err := k.deriveKey(tenantID)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrDecryptFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptFailed, err)
	}
	return string(plaintext), nil
}

func (k *Keyring) deriveKey(tenantID string) ([]byte, error) {
	r := hkdf.New(sha256.New, k.appKey, []byte(tenantID), []byte(keyInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// clearBytes zeros derived key material once it is no longer needed.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a random 32-byte app key. Intended for provisioning
// tooling and tests.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
