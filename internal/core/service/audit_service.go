package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that persists events through repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record stamps and persists a single authentication event.
func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if event.Kind == "" {
		return fmt.Errorf("record audit event: missing kind")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("user_id", event.UserID).
		Msg("audit event recorded")
	return nil
}
