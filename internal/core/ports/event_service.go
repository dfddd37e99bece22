package ports

import (
	"context"

	"github.com/myapi/auth-api/internal/core/domain"
)

// AuditService records a single authentication event.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink accepts events for asynchronous recording. Implementations must
// not block the caller on persistence.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
