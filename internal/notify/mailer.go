// Package notify sends best-effort email notifications for visits to watched
// pages. Failures are logged by the caller and never propagated to the
// request path.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/autoexport/go-export-backend/internal/config"
)

// Notifier delivers one visit notification. Implementations must be safe for
// concurrent use; callers invoke them from background goroutines.
type Notifier interface {
	NotifyVisit(page, ip string, at time.Time) error
}

// SMTPMailer sends visit notifications over plain SMTP.
type SMTPMailer struct {
	cfg config.SMTPConfig

	// send is a seam for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer builds a mailer from config. It returns nil when no SMTP
// host is configured, which disables notifications entirely.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// NotifyVisit emails the configured recipient about one watched-page visit.
func (m *SMTPMailer) NotifyVisit(page, ip string, at time.Time) error {
	if m.cfg.To == "" || m.cfg.From == "" {
		return fmt.Errorf("smtp notification misconfigured: from/to missing")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.cfg.To)
	fmt.Fprintf(&b, "Subject: Visite sur %s\r\n", page)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Page: %s\r\nIP: %s\r\nDate: %s\r\n", page, ip, at.UTC().Format(time.RFC3339))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return m.send(addr, nil, m.cfg.From, []string{m.cfg.To}, []byte(b.String()))
}
