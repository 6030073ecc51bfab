// Package imapmail implements the message source against an IMAP mailbox.
package imapmail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"LeadScanner/internal/config"
	"LeadScanner/internal/domain"
	"LeadScanner/internal/ports"
)

func init() {
	imap.CharsetReader = charset.Reader
}

// Source fetches messages from a single IMAP folder over TLS.
type Source struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

var _ ports.MessageSource = (*Source)(nil)

// NewSource binds mailbox credentials and a logger.
func NewSource(cfg config.MailConfig, logger *slog.Logger) *Source {
	return &Source{cfg: cfg, logger: logger}
}

// FetchSince connects, selects the folder read-only, and returns every
// message delivered since the given instant. Connect, login, select, and
// search failures are fatal to the run.
func (s *Source) FetchSince(ctx context.Context, since time.Time) ([]domain.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("login %s: %w", s.cfg.Username, err)
	}

	folder := s.cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := c.Select(folder, true); err != nil {
		return nil, fmt.Errorf("select %s: %w", folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search since %s: %w", since.Format("2006-01-02"), err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var out []domain.RawMessage
	for msg := range messages {
		out = append(out, s.toRawMessage(folder, msg, section))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch %d messages: %w", len(uids), err)
	}

	s.debug("fetched messages", "folder", folder, "count", len(out))
	return out, nil
}

func (s *Source) toRawMessage(folder string, msg *imap.Message, section *imap.BodySectionName) domain.RawMessage {
	raw := domain.RawMessage{ReceivedAt: time.Now().UTC()}

	if env := msg.Envelope; env != nil {
		raw.Subject = env.Subject
		if !env.Date.IsZero() {
			raw.ReceivedAt = env.Date.UTC()
		}
		if len(env.From) > 0 && env.From[0] != nil {
			raw.SenderName = env.From[0].PersonalName
			raw.SenderEmail = env.From[0].Address()
		}
		raw.ID = strings.Trim(env.MessageId, "<>")
	}

	// No Message-Id: fall back to the folder-scoped UID. Weaker on purpose;
	// UIDs are not stable across folder renumbering.
	if raw.ID == "" {
		raw.ID = fmt.Sprintf("%s/%d", folder, msg.Uid)
	}

	if body := msg.GetBody(section); body != nil {
		raw.TextBody, raw.HTMLBody = readBodies(body, s.logger)
	}

	return raw
}

// readBodies walks the MIME tree and keeps the first plain and HTML parts.
// Parse trouble degrades to empty bodies; a lead with a subject and sender
// is still worth recording.
func readBodies(r io.Reader, logger *slog.Logger) (text, html string) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		if logger != nil {
			logger.Warn("unparsable message body", "error", err)
		}
		return "", ""
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}

		switch contentType {
		case "text/plain":
			if text == "" {
				text = readAll(part.Body)
			}
		case "text/html":
			if html == "" {
				html = readAll(part.Body)
			}
		}
	}

	return text, html
}

func readAll(r io.Reader) string {
	raw, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
