// Package smtpnotify sends qualified-lead alerts over SMTP.
package smtpnotify

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"LeadScanner/internal/config"
	"LeadScanner/internal/domain"
	"LeadScanner/internal/ports"
)

// Notifier emails one alert per qualified lead.
type Notifier struct {
	cfg config.NotifyConfig
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier binds SMTP settings.
func NewNotifier(cfg config.NotifyConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Notify dials and sends a plain-text alert. Failure is per-lead
// recoverable; the caller logs and moves on.
func (n *Notifier) Notify(ctx context.Context, lead domain.LeadRecord) error {
	if n.cfg.SMTPHost == "" || n.cfg.From == "" || n.cfg.To == "" {
		return fmt.Errorf("smtp notifier misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("Qualified lead: %s", lead.Subject))
	m.SetBody("text/plain", alertBody(lead))

	dialer := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.Username, n.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}

func alertBody(lead domain.LeadRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	fmt.Fprintf(&b, "From: %s <%s>\n", lead.SenderName, lead.SenderEmail)
	fmt.Fprintf(&b, "Score: %.2f\n", lead.Score)
	if lead.City != "" {
		fmt.Fprintf(&b, "City: %s\n", lead.City)
	}
	if lead.Price != nil {
		fmt.Fprintf(&b, "Price: %.0f\n", *lead.Price)
	}
	if lead.URL != "" {
		fmt.Fprintf(&b, "Link: %s\n", lead.URL)
	}
	fmt.Fprintf(&b, "\n%s\n", lead.Body)
	return b.String()
}
