package channel

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
)

// SMTPEmailSender delivers email through a plain SMTP relay. Unlike the SES
// provider it supports attachments, carried as base64 MIME parts.
type SMTPEmailSender struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	from     string
	logger   logger.Logger

	// sendMail is swapped out in tests to avoid a live relay.
	sendMail func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPEmailSender(cfg *config.Config, log logger.Logger) *SMTPEmailSender {
	s := &SMTPEmailSender{
		host:     cfg.Integrations.SMTP.Host,
		port:     cfg.Integrations.SMTP.Port,
		username: cfg.Integrations.SMTP.Username,
		password: cfg.Integrations.SMTP.Password,
		useTLS:   cfg.Integrations.SMTP.UseTLS,
		from:     cfg.Integrations.SMTP.DefaultFrom,
		logger:   log.WithFields(map[string]interface{}{"channel": "email", "provider": "smtp"}),
	}
	s.sendMail = smtp.SendMail
	return s
}

func (s *SMTPEmailSender) Send(ctx context.Context, msg EmailMessage) Result {
	if err := ValidateEmailAddress(msg.To); err != nil {
		return failure("%v", err)
	}
	if err := ctx.Err(); err != nil {
		return failure("context cancelled before sending email: %v", err)
	}

	raw := s.buildMessage(msg)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" && s.password != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	var err error
	if s.useTLS {
		err = s.sendWithTLS(addr, auth, msg.To, raw)
	} else {
		err = s.sendMail(addr, auth, s.from, []string{msg.To}, raw)
	}
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    msg.To,
		})
		return failure("smtp send: %v", err)
	}
	return Result{Success: true, Message: fmt.Sprintf("email sent to %s", msg.To)}
}

func (s *SMTPEmailSender) buildMessage(msg EmailMessage) []byte {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	const mixedBoundary = "legalease-mixed"
	const altBoundary = "legalease-alt"

	hasAttachments := len(msg.Attachments) > 0
	if hasAttachments {
		b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixedBoundary))
		b.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	}

	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary))

	text := msg.TextBody
	if text == "" && msg.HTMLBody != "" {
		text = htmlFallback(msg.HTMLBody)
	}
	if text != "" {
		b.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(text)
		b.WriteString("\r\n")
	}
	if msg.HTMLBody != "" {
		b.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTMLBody)
		b.WriteString("\r\n")
	}
	b.WriteString(fmt.Sprintf("--%s--\r\n", altBoundary))

	if hasAttachments {
		for _, att := range msg.Attachments {
			contentType := att.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			b.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
			b.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
			b.WriteString("Content-Transfer-Encoding: base64\r\n")
			b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename))
			b.WriteString(base64.StdEncoding.EncodeToString(att.Data))
			b.WriteString("\r\n")
		}
		b.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))
	}

	return []byte(b.String())
}

func (s *SMTPEmailSender) sendWithTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.host}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(s.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func htmlFallback(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
