package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"

	"formgate/internal/config"
	"formgate/internal/contact"
	"formgate/internal/logger"
	"formgate/internal/site"
	"formgate/pkg/metrics"
)

// SMTPMailer delivers submission notifications over SMTP.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger logger.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: log}
}

func (m *SMTPMailer) SendSubmission(ctx context.Context, s *site.Site, sub contact.Submission, metadata map[string]string) error {
	content := BuildContent(s.ID, sub.Name(), sub.Email(), sub.Message(), metadata)

	e := email.NewEmail()
	e.From = s.FromEmail
	e.To = []string{s.RecipientEmail}
	e.ReplyTo = []string{fmt.Sprintf("%s <%s>", sub.Name(), sub.Email())}
	e.Subject = content.Subject
	e.Text = []byte(content.TextBody)
	e.HTML = []byte(content.HTMLBody)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	start := time.Now()
	var err error
	if m.cfg.UseTLS {
		err = e.SendWithStartTLS(addr, auth, nil)
	} else {
		err = e.Send(addr, auth)
	}

	if err != nil {
		metrics.ObserveEmailDelivery(time.Since(start), "error")
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.ObserveEmailDelivery(time.Since(start), "success")
	m.logger.InfowCtx(ctx, "Submission email sent",
		"site_id", s.ID,
		"to", s.RecipientEmail,
	)
	return nil
}
