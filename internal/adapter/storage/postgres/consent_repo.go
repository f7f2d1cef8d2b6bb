package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConsentRepo implements ports.ConsentRepository. Permissions are stored as
// TEXT[] columns and payment limits as nullable JSONB.
type ConsentRepo struct {
	pool Pool
}

// NewConsentRepo creates a new ConsentRepo.
func NewConsentRepo(pool Pool) *ConsentRepo {
	return &ConsentRepo{pool: pool}
}

func toPermissions(raw []string) []domain.Permission {
	out := make([]domain.Permission, len(raw))
	for i, s := range raw {
		out[i] = domain.Permission(s)
	}
	return out
}

func encodeLimits(l *domain.PaymentLimits) ([]byte, error) {
	if l == nil {
		return nil, nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode payment limits: %w", err)
	}
	return raw, nil
}

func decodeLimits(raw []byte) (*domain.PaymentLimits, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	l := &domain.PaymentLimits{}
	if err := json.Unmarshal(raw, l); err != nil {
		return nil, fmt.Errorf("decode payment limits: %w", err)
	}
	return l, nil
}

const requestColumns = `id, client_id, requesting_bank, permissions, reason, status, consent_id, created_at, decided_at, payment_limits`

func scanRequest(row pgx.Row) (*domain.ConsentRequest, error) {
	req := &domain.ConsentRequest{}
	var (
		perms  []string
		limits []byte
	)
	err := row.Scan(&req.ID, &req.ClientID, &req.RequestingBank, &perms, &req.Reason,
		&req.Status, &req.ConsentID, &req.CreatedAt, &req.DecidedAt, &limits)
	if err != nil {
		return nil, err
	}
	req.Permissions = toPermissions(perms)
	if req.Limits, err = decodeLimits(limits); err != nil {
		return nil, err
	}
	return req, nil
}

const consentColumns = `id, request_id, client_id, granted_to, permissions, status, created_at, expires_at, revoked_at, payment_limits`

func scanConsent(row pgx.Row) (*domain.Consent, error) {
	c := &domain.Consent{}
	var (
		perms  []string
		limits []byte
	)
	err := row.Scan(&c.ID, &c.RequestID, &c.ClientID, &c.GrantedTo, &perms,
		&c.Status, &c.CreatedAt, &c.ExpiresAt, &c.RevokedAt, &limits)
	if err != nil {
		return nil, err
	}
	c.Permissions = toPermissions(perms)
	if c.Limits, err = decodeLimits(limits); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateRequest inserts a consent request within a transaction.
func (r *ConsentRepo) CreateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error {
	query := `INSERT INTO consent_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	limits, err := encodeLimits(req.Limits)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, query,
		req.ID, req.ClientID, req.RequestingBank, domain.PermissionStrings(req.Permissions), req.Reason,
		req.Status, req.ConsentID, req.CreatedAt, req.DecidedAt, limits,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert consent request: %w", err)
	}
	return nil
}

// GetRequest fetches a consent request by id.
func (r *ConsentRepo) GetRequest(ctx context.Context, id uuid.UUID) (*domain.ConsentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM consent_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consent request: %w", err)
	}
	return req, nil
}

// GetRequestForUpdate locks a consent request row.
func (r *ConsentRepo) GetRequestForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConsentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM consent_requests WHERE id = $1 FOR UPDATE`

	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consent request for update: %w", err)
	}
	return req, nil
}

// UpdateRequest persists the decision on a request.
func (r *ConsentRepo) UpdateRequest(ctx context.Context, tx pgx.Tx, req *domain.ConsentRequest) error {
	query := `UPDATE consent_requests SET status = $1, consent_id = $2, decided_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, req.Status, req.ConsentID, req.DecidedAt, req.ID)
	if err != nil {
		return fmt.Errorf("update consent request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("consent request not found: %s", req.ID)
	}
	return nil
}

// ListRequestsByClient lists requests for a client. An empty status lists all.
func (r *ConsentRepo) ListRequestsByClient(ctx context.Context, clientID string, status domain.ConsentRequestStatus) ([]domain.ConsentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM consent_requests
		WHERE client_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, clientID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list consent requests: %w", err)
	}
	defer rows.Close()

	var out []domain.ConsentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent request row: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent request rows: %w", err)
	}
	return out, nil
}

// CreateConsent inserts a consent within a transaction.
func (r *ConsentRepo) CreateConsent(ctx context.Context, tx pgx.Tx, c *domain.Consent) error {
	query := `INSERT INTO consents (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	limits, err := encodeLimits(c.Limits)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, query,
		c.ID, c.RequestID, c.ClientID, c.GrantedTo, domain.PermissionStrings(c.Permissions),
		c.Status, c.CreatedAt, c.ExpiresAt, c.RevokedAt, limits,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}

// GetConsent fetches a consent by id.
func (r *ConsentRepo) GetConsent(ctx context.Context, id uuid.UUID) (*domain.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE id = $1`

	c, err := scanConsent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consent: %w", err)
	}
	return c, nil
}

// GetConsentForUpdate locks a consent row.
func (r *ConsentRepo) GetConsentForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE id = $1 FOR UPDATE`

	c, err := scanConsent(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consent for update: %w", err)
	}
	return c, nil
}

// UpdateConsentStatus changes a consent's status. revoked_at is set only for
// revocations.
func (r *ConsentRepo) UpdateConsentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ConsentStatus, at time.Time) error {
	var revokedAt *time.Time
	if status == domain.ConsentRevoked {
		revokedAt = &at
	}
	query := `UPDATE consents SET status = $1, revoked_at = COALESCE($2, revoked_at) WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, revokedAt, id)
	if err != nil {
		return fmt.Errorf("update consent status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("consent not found: %s", id)
	}
	return nil
}

// ListConsentsByClient lists every consent a client granted.
func (r *ConsentRepo) ListConsentsByClient(ctx context.Context, clientID string) ([]domain.Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var out []domain.Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consent row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consent rows: %w", err)
	}
	return out, nil
}

// PeerConsentRepo implements ports.PeerConsentRepository.
type PeerConsentRepo struct {
	pool Pool
}

// NewPeerConsentRepo creates a new PeerConsentRepo.
func NewPeerConsentRepo(pool Pool) *PeerConsentRepo {
	return &PeerConsentRepo{pool: pool}
}

const peerConsentColumns = `id, client_id, bank_code, peer_client_id, peer_request_id, peer_consent_id,
	permissions, status, expires_at, created_at, updated_at`

func scanPeerConsent(row pgx.Row) (*domain.PeerConsent, error) {
	pc := &domain.PeerConsent{}
	var perms []string
	err := row.Scan(&pc.ID, &pc.ClientID, &pc.BankCode, &pc.PeerClientID, &pc.PeerRequestID, &pc.PeerConsentID,
		&perms, &pc.Status, &pc.ExpiresAt, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	pc.Permissions = toPermissions(perms)
	return pc, nil
}

// Create inserts a held consent.
func (r *PeerConsentRepo) Create(ctx context.Context, pc *domain.PeerConsent) error {
	query := `INSERT INTO peer_consents (` + peerConsentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		pc.ID, pc.ClientID, pc.BankCode, pc.PeerClientID, pc.PeerRequestID, pc.PeerConsentID,
		domain.PermissionStrings(pc.Permissions), pc.Status, pc.ExpiresAt, pc.CreatedAt, pc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrAlreadyExists
		}
		return fmt.Errorf("insert peer consent: %w", err)
	}
	return nil
}

// Get fetches a held consent by local id.
func (r *PeerConsentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.PeerConsent, error) {
	query := `SELECT ` + peerConsentColumns + ` FROM peer_consents WHERE id = $1`

	pc, err := scanPeerConsent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get peer consent: %w", err)
	}
	return pc, nil
}

// Update persists the state reported by the peer.
func (r *PeerConsentRepo) Update(ctx context.Context, pc *domain.PeerConsent) error {
	query := `UPDATE peer_consents SET peer_consent_id = $1, status = $2, expires_at = $3, updated_at = $4 WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query, pc.PeerConsentID, pc.Status, pc.ExpiresAt, pc.UpdatedAt, pc.ID)
	if err != nil {
		return fmt.Errorf("update peer consent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("peer consent not found: %s", pc.ID)
	}
	return nil
}

// ListByClient lists held consents for a client, oldest first.
func (r *PeerConsentRepo) ListByClient(ctx context.Context, clientID string) ([]domain.PeerConsent, error) {
	query := `SELECT ` + peerConsentColumns + ` FROM peer_consents WHERE client_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list peer consents: %w", err)
	}
	defer rows.Close()

	var out []domain.PeerConsent
	for rows.Next() {
		pc, err := scanPeerConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan peer consent row: %w", err)
		}
		out = append(out, *pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peer consent rows: %w", err)
	}
	return out, nil
}
