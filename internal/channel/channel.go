// Package channel implements the delivery transports. Senders never return a
// Go error to callers: every attempt collapses to a Result so the dispatcher
// can record SENT or FAILED without distinguishing transport error shapes.
package channel

import (
	"context"
	"fmt"
	"strings"

	"legalease-notifications/internal/common/errors"
)

// Result is the uniform outcome of a delivery attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Attachment is an optional file carried by an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage is a fully rendered email ready for a transport.
type EmailMessage struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

// EmailSender delivers a rendered email over one concrete transport.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) Result
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) Result
}

// ValidateEmailAddress is the fail-fast check run before any transport work.
// It is intentionally shallow; the transport is the real validator.
func ValidateEmailAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.NewInvalidRecipientAddressError(addr)
	}
	if !strings.Contains(addr, "@") || !strings.Contains(addr, ".") {
		return errors.NewInvalidRecipientAddressError(addr)
	}
	return nil
}

// ValidatePhoneNumber is the fail-fast check for SMS recipients.
func ValidatePhoneNumber(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.NewInvalidRecipientAddressError(phone)
	}
	return nil
}

func failure(format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
