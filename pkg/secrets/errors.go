package secrets

import "errors"

var (
	ErrInvalidAppKey = errors.New("invalid app key: must be 32 bytes")
	ErrEmptyTenantID = errors.New("tenant id must not be empty")

	ErrEncryptFailed     = errors.New("credential encryption failed")
	ErrDecryptFailed     = errors.New("credential decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
