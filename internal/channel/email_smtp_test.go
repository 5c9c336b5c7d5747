package channel

import (
	"context"
	"encoding/base64"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease-notifications/internal/common/logger"
)

func newTestSMTPSender() *SMTPEmailSender {
	return &SMTPEmailSender{
		host:   "localhost",
		port:   1025,
		from:   "noreply@legalease.com",
		logger: logger.NewNoOpLogger(),
	}
}

func TestSMTPSendSuccess(t *testing.T) {
	s := newTestSMTPSender()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	res := s.Send(context.Background(), EmailMessage{
		To:       "alice@example.com",
		Subject:  "Welcome!",
		HTMLBody: "<p>hello alice</p>",
		TextBody: "hello alice",
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "localhost:1025", gotAddr)
	assert.Equal(t, "noreply@legalease.com", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)

	raw := string(gotMsg)
	assert.Contains(t, raw, "Subject: Welcome!\r\n")
	assert.Contains(t, raw, "To: alice@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "hello alice")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, raw, "<p>hello alice</p>")
	assert.Contains(t, raw, "--legalease-alt--")
	assert.NotContains(t, raw, "multipart/mixed")
}

func TestSMTPSendFailure(t *testing.T) {
	s := newTestSMTPSender()
	s.sendMail = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	res := s.Send(context.Background(), EmailMessage{To: "alice@example.com", Subject: "x", TextBody: "y"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "connection refused")
}

func TestSMTPSendInvalidAddressSkipsTransport(t *testing.T) {
	s := newTestSMTPSender()
	called := false
	s.sendMail = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	res := s.Send(context.Background(), EmailMessage{To: "bogus", Subject: "x"})

	assert.False(t, res.Success)
	assert.False(t, called)
}

func TestSMTPSendCancelledContext(t *testing.T) {
	s := newTestSMTPSender()
	called := false
	s.sendMail = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.Send(ctx, EmailMessage{To: "alice@example.com", Subject: "x", TextBody: "y"})

	assert.False(t, res.Success)
	assert.False(t, called)
}

func TestSMTPBuildMessageWithAttachment(t *testing.T) {
	s := newTestSMTPSender()

	raw := string(s.buildMessage(EmailMessage{
		To:       "alice@example.com",
		Subject:  "Hearing bundle",
		HTMLBody: "<p>see attached</p>",
		Attachments: []Attachment{{
			Filename:    "bundle.pdf",
			ContentType: "application/pdf",
			Data:        []byte("pdf-bytes"),
		}},
	}))

	assert.Contains(t, raw, `multipart/mixed; boundary="legalease-mixed"`)
	assert.Contains(t, raw, `multipart/alternative; boundary="legalease-alt"`)
	assert.Contains(t, raw, "Content-Type: application/pdf")
	assert.Contains(t, raw, `Content-Disposition: attachment; filename="bundle.pdf"`)
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("pdf-bytes")))
	assert.Contains(t, raw, "--legalease-mixed--")
	// HTML-only input still gets a generated plain text part.
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "see attached")
}

func TestSMTPBuildMessageAttachmentDefaultContentType(t *testing.T) {
	s := newTestSMTPSender()

	raw := string(s.buildMessage(EmailMessage{
		To:          "alice@example.com",
		Subject:     "x",
		TextBody:    "y",
		Attachments: []Attachment{{Filename: "blob.bin", Data: []byte{1, 2, 3}}},
	}))

	assert.Contains(t, raw, "Content-Type: application/octet-stream")
}

func TestHTMLFallback(t *testing.T) {
	assert.Equal(t, "Hello Welcome back", htmlFallback("<h1>Hello</h1><p>Welcome   back</p>"))
}
