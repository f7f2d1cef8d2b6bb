package peer

import (
	"sort"
	"strings"

	"federated-bank/config"
	"federated-bank/internal/core/domain"
)

// Directory implements ports.PeerDirectory from static configuration.
type Directory struct {
	peers map[string]domain.Peer
}

// NewDirectory builds the directory. Bank codes are matched
// case-insensitively and stored lower-case.
func NewDirectory(cfg []config.PeerConfig) *Directory {
	d := &Directory{peers: make(map[string]domain.Peer, len(cfg))}
	for _, p := range cfg {
		code := strings.ToLower(strings.TrimSpace(p.Code))
		d.peers[code] = domain.Peer{
			Code:     code,
			Name:     p.Name,
			APIURL:   strings.TrimRight(p.APIURL, "/"),
			JWKSURL:  p.KeySetURL(),
			JWKSFile: p.JWKSFile,
		}
	}
	return d
}

// Lookup finds a peer by code.
func (d *Directory) Lookup(code string) (domain.Peer, bool) {
	p, ok := d.peers[strings.ToLower(strings.TrimSpace(code))]
	return p, ok
}

// All returns every peer ordered by code.
func (d *Directory) All() []domain.Peer {
	out := make([]domain.Peer, 0, len(d.peers))
	for _, p := range d.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
