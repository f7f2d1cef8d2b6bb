package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConsentRepo implements ports.ConsentRepository.
type ConsentRepo struct{ s *Store }

// NewConsentRepo creates a new ConsentRepo.
func NewConsentRepo(s *Store) *ConsentRepo { return &ConsentRepo{s: s} }

func requestKey(id uuid.UUID) string { return "request:" + id.String() }
func consentKey(id uuid.UUID) string { return "consent:" + id.String() }

func (r *ConsentRepo) CreateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, requestKey(req.ID)); err != nil {
		return fmt.Errorf("lock consent request: %w", err)
	}
	if r.currentRequest(mt, req.ID) != nil {
		return ports.ErrAlreadyExists
	}
	row := *req
	mt.stage(requestKey(req.ID), row, func() { r.s.requests[row.ID] = row })
	return nil
}

func (r *ConsentRepo) GetRequest(_ context.Context, id uuid.UUID) (*domain.ConsentRequest, error) {
	return r.committedRequest(id), nil
}

func (r *ConsentRepo) committedRequest(id uuid.UUID) *domain.ConsentRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil
	}
	return &req
}

func (r *ConsentRepo) currentRequest(mt *Tx, id uuid.UUID) *domain.ConsentRequest {
	if v, ok := mt.lookup(requestKey(id)); ok {
		req := v.(domain.ConsentRequest)
		return &req
	}
	return r.committedRequest(id)
}

func (r *ConsentRepo) GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConsentRequest, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, requestKey(id)); err != nil {
		return nil, fmt.Errorf("lock consent request: %w", err)
	}
	return r.currentRequest(mt, id), nil
}

func (r *ConsentRepo) UpdateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, requestKey(req.ID)); err != nil {
		return fmt.Errorf("lock consent request: %w", err)
	}
	if r.currentRequest(mt, req.ID) == nil {
		return fmt.Errorf("consent request not found: %s", req.ID)
	}
	row := *req
	mt.stage(requestKey(req.ID), row, func() { r.s.requests[row.ID] = row })
	return nil
}

func (r *ConsentRepo) ListRequestsByClient(_ context.Context, clientID string, status domain.ConsentRequestStatus) ([]domain.ConsentRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ConsentRequest
	for _, req := range r.s.requests {
		if req.ClientID == clientID && (status == "" || req.Status == status) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ConsentRepo) CreateConsent(ctx context.Context, tx pgx.Tx, c *domain.Consent) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, consentKey(c.ID)); err != nil {
		return fmt.Errorf("lock consent: %w", err)
	}
	if r.currentConsent(mt, c.ID) != nil {
		return ports.ErrAlreadyExists
	}
	row := *c
	mt.stage(consentKey(c.ID), row, func() { r.s.consents[row.ID] = row })
	return nil
}

// GetConsent reads the committed row. A revoke is visible here as soon as
// its transaction commits.
func (r *ConsentRepo) GetConsent(_ context.Context, id uuid.UUID) (*domain.Consent, error) {
	return r.committedConsent(id), nil
}

func (r *ConsentRepo) committedConsent(id uuid.UUID) *domain.Consent {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consents[id]
	if !ok {
		return nil
	}
	return &c
}

func (r *ConsentRepo) currentConsent(mt *Tx, id uuid.UUID) *domain.Consent {
	if v, ok := mt.lookup(consentKey(id)); ok {
		c := v.(domain.Consent)
		return &c
	}
	return r.committedConsent(id)
}

func (r *ConsentRepo) GetConsentForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Consent, error) {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, consentKey(id)); err != nil {
		return nil, fmt.Errorf("lock consent: %w", err)
	}
	return r.currentConsent(mt, id), nil
}

func (r *ConsentRepo) UpdateConsentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ConsentStatus, at time.Time) error {
	mt, err := asTx(r.s, tx)
	if err != nil {
		return err
	}
	if err := mt.lock(ctx, consentKey(id)); err != nil {
		return fmt.Errorf("lock consent: %w", err)
	}
	c := r.currentConsent(mt, id)
	if c == nil {
		return fmt.Errorf("consent not found: %s", id)
	}
	row := *c
	row.Status = status
	if status == domain.ConsentRevoked {
		row.RevokedAt = &at
	}
	mt.stage(consentKey(id), row, func() { r.s.consents[id] = row })
	return nil
}

func (r *ConsentRepo) ListConsentsByClient(_ context.Context, clientID string) ([]domain.Consent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Consent
	for _, c := range r.s.consents {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// PeerConsentRepo implements ports.PeerConsentRepository.
type PeerConsentRepo struct{ s *Store }

// NewPeerConsentRepo creates a new PeerConsentRepo.
func NewPeerConsentRepo(s *Store) *PeerConsentRepo { return &PeerConsentRepo{s: s} }

func (r *PeerConsentRepo) Create(_ context.Context, pc *domain.PeerConsent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.peerConsents[pc.ID]; ok {
		return ports.ErrAlreadyExists
	}
	r.s.peerConsents[pc.ID] = *pc
	return nil
}

func (r *PeerConsentRepo) Get(_ context.Context, id uuid.UUID) (*domain.PeerConsent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pc, ok := r.s.peerConsents[id]
	if !ok {
		return nil, nil
	}
	return &pc, nil
}

func (r *PeerConsentRepo) Update(_ context.Context, pc *domain.PeerConsent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.peerConsents[pc.ID]; !ok {
		return fmt.Errorf("peer consent not found: %s", pc.ID)
	}
	r.s.peerConsents[pc.ID] = *pc
	return nil
}

func (r *PeerConsentRepo) ListByClient(_ context.Context, clientID string) ([]domain.PeerConsent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.PeerConsent
	for _, pc := range r.s.peerConsents {
		if pc.ClientID == clientID {
			out = append(out, pc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BankCode != out[j].BankCode {
			return out[i].BankCode < out[j].BankCode
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
