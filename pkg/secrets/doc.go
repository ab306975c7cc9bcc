// Package secrets protects tenant database credentials at rest.
//
// A Keyring derives one 32-byte key per tenant with HKDF-SHA-256, using a
// single application key as the secret and the tenant id as salt, then seals
// the credential with AES-256-GCM. The nonce is prepended and the result is
// base64-encoded, so the stored string is self-contained:
//
//	kr, _ := secrets.NewKeyring(appKey)
//	sealed, _ := kr.EncryptCredential(tenantID, "s3cr3t-db-password")
//	plain, _ := kr.DecryptCredential(tenantID, sealed)
//
// Because the tenant id participates in key derivation, a ciphertext created
// for one tenant fails authentication when decrypted for any other. Decrypt
// failures indicate key or data corruption and are not retryable.
package secrets
