package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"LeadScanner/internal/domain"
	"LeadScanner/internal/ports"
)

// PostgresWriter archives lead records in Postgres. It is strictly a
// secondary sink: the CSV log stays the durable record, and archive failures
// never unrecord a lead.
type PostgresWriter struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.LeadArchive = (*PostgresWriter)(nil)

// NewPostgresWriter opens a connection pool for the given DSN.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresWriter{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Store inserts the record keyed by message identifier; replays of the same
// message are ignored by the conflict clause.
func (w *PostgresWriter) Store(ctx context.Context, messageID string, r domain.LeadRecord) error {
	if w.db == nil {
		return nil
	}

	var price any
	if r.Price != nil {
		price = *r.Price
	}

	query, args, err := w.builder.
		Insert("leads").
		Columns("message_id", "captured_at", "source", "sender_name", "sender_email",
			"subject", "body", "url", "city", "price", "score", "qualified").
		Values(messageID, r.CapturedAt.UTC(), r.Source, r.SenderName, r.SenderEmail,
			r.Subject, r.Body, r.URL, r.City, price, r.Score, r.Qualified).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("archive lead %s: %w", messageID, err)
	}
	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
