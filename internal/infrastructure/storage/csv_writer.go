package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"LeadScanner/internal/domain"
	"LeadScanner/internal/ports"
)

// csvHeader fixes the column order to match LeadRecord's attribute order.
var csvHeader = []string{
	"captured_at", "source", "sender_name", "sender_email", "subject",
	"body", "url", "city", "price", "score", "qualified",
}

// CSVWriter appends lead records to a UTF-8 CSV log, writing the header
// exactly once: only when the file is brand new (or empty).
type CSVWriter struct {
	path string
}

var _ ports.LeadSink = (*CSVWriter)(nil)

// NewCSVWriter binds the log file path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Append writes one record, creating the file and parent directory on first
// use. Each call flushes before returning so an aborted run keeps every row
// appended so far.
func (w *CSVWriter) Append(record domain.LeadRecord) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open lead log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat lead log: %w", err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if err := writer.Write(toRow(record)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush lead log: %w", err)
	}
	return nil
}

func toRow(r domain.LeadRecord) []string {
	price := ""
	if r.Price != nil {
		price = strconv.FormatFloat(*r.Price, 'f', -1, 64)
	}

	return []string{
		r.CapturedAt.UTC().Format(time.RFC3339),
		r.Source,
		r.SenderName,
		r.SenderEmail,
		r.Subject,
		r.Body,
		r.URL,
		r.City,
		price,
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		strconv.FormatBool(r.Qualified),
	}
}
