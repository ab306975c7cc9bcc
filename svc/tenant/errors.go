package tenant

import "errors"

var (
	// ErrSlugTaken is returned when an active tenant already holds the
	// requested slug. Inactive tenants free their slug for reuse.
	ErrSlugTaken = errors.New("tenant slug already taken")

	// ErrCredentialDecrypt is returned when a stored credential cannot be
	// decrypted. This is fatal misconfiguration (wrong app key, corrupted
	// row), never something to retry.
	ErrCredentialDecrypt = errors.New("tenant credential decryption failed")

	// ErrFailedToParseRedisConnString is returned for malformed Redis URLs.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady is returned when Redis does not answer a ping within
	// the configured retry budget.
	ErrRedisNotReady = errors.New("redis did not become ready within the given time period")

	// ErrInvalidSeedFile is returned when a seed file fails to parse or
	// fails validation.
	ErrInvalidSeedFile = errors.New("invalid tenant seed file")
)
