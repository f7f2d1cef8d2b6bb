package service

import (
	"context"
	"sync"
	"time"

	"federated-bank/internal/core/domain"
	"federated-bank/internal/core/ports"
	"federated-bank/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultAuditQueue = 1024

// AuditServiceImpl writes audit records from a single background worker.
// Log never blocks the request path; a full queue drops the record.
type AuditServiceImpl struct {
	repo  ports.AuditRepository
	log   zerolog.Logger
	queue chan *domain.AuditLog
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAuditService starts the worker. If repo is nil, records only reach the logger.
func NewAuditService(repo ports.AuditRepository, queueSize int, log zerolog.Logger) *AuditServiceImpl {
	if queueSize <= 0 {
		queueSize = defaultAuditQueue
	}
	s := &AuditServiceImpl{
		repo:  repo,
		log:   log,
		queue: make(chan *domain.AuditLog, queueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Log enqueues entry. The request context is not retained.
func (s *AuditServiceImpl) Log(_ context.Context, entry *domain.AuditLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn().Str("action", string(entry.Action)).Msg("audit service closed, record dropped")
		return
	}
	select {
	case s.queue <- entry:
	default:
		metrics.AuditDropped.Inc()
		s.log.Warn().Str("action", string(entry.Action)).Str("actor", entry.Actor).Msg("audit queue full, record dropped")
	}
}

// Close stops accepting records and waits for the queue to drain or ctx to end.
func (s *AuditServiceImpl) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuditServiceImpl) run() {
	defer close(s.done)
	for entry := range s.queue {
		s.log.Info().
			Str("action", string(entry.Action)).
			Str("actor_type", string(entry.ActorType)).
			Str("actor", entry.Actor).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Str("ip", entry.IPAddress).
			Msg("audit")

		if s.repo == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
		}
		cancel()
	}
}
