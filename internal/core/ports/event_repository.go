package ports

import (
	"context"

	"github.com/myapi/auth-api/internal/core/domain"
)

// AuditRepository persists authentication events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
