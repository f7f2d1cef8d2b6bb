package peer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/pkg/jwk"
	"federated-bank/pkg/metrics"
)

const maxKeySetBytes = 1 << 20

// KeySetFetcher implements ports.KeySetFetcher. A peer with a JWKS file is
// read from disk; otherwise its JWKS URL is fetched over HTTP.
type KeySetFetcher struct {
	httpClient HTTPClient
}

// NewKeySetFetcher creates a fetcher.
func NewKeySetFetcher(httpClient HTTPClient) *KeySetFetcher {
	return &KeySetFetcher{httpClient: httpClient}
}

// FetchKeySet loads the peer's published keys.
func (f *KeySetFetcher) FetchKeySet(ctx context.Context, p domain.Peer) (jwk.Set, error) {
	if p.JWKSFile != "" {
		raw, err := os.ReadFile(p.JWKSFile)
		if err != nil {
			return jwk.Set{}, fmt.Errorf("read key set of %s: %w", p.Code, err)
		}
		return jwk.Parse(raw)
	}
	if p.JWKSURL == "" {
		return jwk.Set{}, errors.New("peer " + p.Code + " has no key source")
	}

	defer metrics.ObservePeer(p.Code, "jwks", time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.JWKSURL, nil)
	if err != nil {
		return jwk.Set{}, fmt.Errorf("build key set request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return jwk.Set{}, fmt.Errorf("fetch key set of %s: %w", p.Code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return jwk.Set{}, &PeerStatusError{Bank: p.Code, Status: resp.StatusCode}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return jwk.Set{}, fmt.Errorf("read key set of %s: %w", p.Code, err)
	}
	return jwk.Parse(raw)
}

// PeerStatusError reports a key endpoint that did not answer 200.
type PeerStatusError struct {
	Bank   string
	Status int
}

func (e *PeerStatusError) Error() string {
	return fmt.Sprintf("key set of %s: http %d", e.Bank, e.Status)
}
