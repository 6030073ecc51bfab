package ports

import (
	"context"
	"time"

	"LeadScanner/internal/domain"
)

// MessageSource pulls inbox messages delivered after the given instant.
type MessageSource interface {
	FetchSince(ctx context.Context, since time.Time) ([]domain.RawMessage, error)
}

// LeadSink appends lead records to the durable log.
type LeadSink interface {
	Append(record domain.LeadRecord) error
}

// LeadArchive stores lead records in a secondary queryable backend.
type LeadArchive interface {
	Store(ctx context.Context, messageID string, record domain.LeadRecord) error
}

// Notifier dispatches an alert for a qualified lead.
type Notifier interface {
	Notify(ctx context.Context, lead domain.LeadRecord) error
}

// Runner triggers recurring pipeline executions.
type Runner interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop()
}
