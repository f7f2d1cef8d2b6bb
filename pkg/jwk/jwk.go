// Package jwk publishes and reads the RSA key sets federated banks expose at
// /.well-known/jwks.json. Encoding is delegated to go-jose.
package jwk

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// Key is a single JSON Web Key.
type Key = jose.JSONWebKey

// Set is a published key set.
type Set = jose.JSONWebKeySet

// FromRSA builds the public signing JWK for pub under the given key id.
func FromRSA(kid string, pub *rsa.PublicKey) Key {
	return Key{
		Key:       pub,
		KeyID:     kid,
		Use:       "sig",
		Algorithm: string(jose.RS256),
	}
}

// Parse decodes a JWKS document. Entries go-jose cannot decode are dropped
// so one bad key does not hide the rest of the set.
func Parse(data []byte) (Set, error) {
	var raw struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Set{}, fmt.Errorf("unmarshal jwks: %w", err)
	}
	set := Set{Keys: make([]Key, 0, len(raw.Keys))}
	for _, entry := range raw.Keys {
		var k Key
		if err := k.UnmarshalJSON(entry); err != nil {
			continue
		}
		set.Keys = append(set.Keys, k)
	}
	return set, nil
}

// RSAKeys returns every usable RSA signing key in s indexed by kid.
// Keys without a kid, non-RSA keys and keys marked for encryption are skipped.
func RSAKeys(s Set) map[string]*rsa.PublicKey {
	out := make(map[string]*rsa.PublicKey, len(s.Keys))
	for _, k := range s.Keys {
		if k.KeyID == "" || (k.Use != "" && k.Use != "sig") || !k.Valid() {
			continue
		}
		pub, ok := k.Key.(*rsa.PublicKey)
		if !ok {
			continue
		}
		out[k.KeyID] = pub
	}
	return out
}
