package secrets

import (
	"encoding/base64"
	"errors"
)

// Config carries the application encryption key, base64-encoded so it can
// live in an environment variable.
type Config struct {
	AppKey string `env:"SECRETS_APP_KEY,required"`
}

// NewKeyringFromConfig decodes the configured app key and builds a Keyring.
func NewKeyringFromConfig(cfg Config) (*Keyring, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.AppKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidAppKey, err)
	}
	return NewKeyring(key)
}
