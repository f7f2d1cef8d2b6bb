package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// LoadSigningKey reads the bank's RSA private key from a PEM file. With no
// path, or a path that does not exist, an ephemeral key is generated; peers
// can still verify it through the published key set until restart.
func LoadSigningKey(path string, log zerolog.Logger) (*rsa.PrivateKey, error) {
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
			if err != nil {
				return nil, fmt.Errorf("parse signing key %s: %w", path, err)
			}
			return key, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read signing key: %w", err)
		}
	}

	log.Warn().Str("path", path).Msg("no signing key on disk, generating an ephemeral RSA key")
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}
