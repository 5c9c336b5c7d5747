// Package handlers maps event topics to notification dispatches. Each handler
// owns one topic, validates the normalized payload against a JSON Schema, and
// discards invalid events without error: a malformed event is logged and
// dropped, never retried.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/common/metrics"
	"legalease-notifications/internal/consumer"
	"legalease-notifications/internal/dispatcher"
)

// Sender is the dispatch dependency, implemented by dispatcher.Dispatcher.
type Sender interface {
	Send(ctx context.Context, req dispatcher.Request) dispatcher.Result
}

var _ Sender = (*dispatcher.Dispatcher)(nil)

// emailPattern is the shallow recipient check applied at validation time; the
// transport performs the real validation.
const emailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

type base struct {
	topic  string
	schema map[string]interface{}
	sender Sender
	logger logger.Logger
}

func newBase(topic string, required []string, sender Sender, log logger.Logger) base {
	properties := map[string]interface{}{
		"email": map[string]interface{}{
			"type":    "string",
			"pattern": emailPattern,
		},
	}
	// Required fields must be non-empty, not merely present; minLength only
	// constrains string values, so numeric ids still pass.
	for _, field := range required {
		if field == "email" {
			continue
		}
		properties[field] = map[string]interface{}{"minLength": 1}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return base{
		topic:  topic,
		schema: schema,
		sender: sender,
		logger: log.WithFields(map[string]interface{}{"topic": topic}),
	}
}

func (b *base) Topic() string { return b.topic }

// validate reports whether the payload satisfies the topic schema. A false
// return has already been logged and counted; the caller just drops the event.
func (b *base) validate(payload map[string]interface{}) bool {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(b.schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		b.discard(payload, fmt.Sprintf("validation error: %v", err))
		return false
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		b.discard(payload, strings.Join(errs, "; "))
		return false
	}
	return true
}

func (b *base) discard(payload map[string]interface{}, reason string) {
	metrics.EventsDiscarded.WithLabelValues(b.topic, "invalid_payload").Inc()
	b.logger.Warn("discarding event with invalid payload", map[string]interface{}{
		"reason":  reason,
		"payload": payload,
	})
}

// dispatchErr converts a dispatch result into a handler error. Only failures
// that happened before a record was written are errors: those are
// infrastructure faults worth redelivering. A FAILED record is final from the
// event's point of view and recovered through manual retry.
func dispatchErr(res dispatcher.Result) error {
	if !res.Success && !res.Skipped && res.NotificationID == "" {
		return fmt.Errorf("dispatch failed before record creation: %s", res.Message)
	}
	return nil
}

// stringField coerces a payload value to string. JSON numbers arrive as
// float64 and integral values render without a fraction.
func stringField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// usernameOr falls back to the local part of the email address.
func usernameOr(payload map[string]interface{}, email string) string {
	if name := stringField(payload, "username"); name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// All builds the full static handler table.
func All(sender Sender, cfg *config.Config, log logger.Logger) []consumer.Handler {
	return []consumer.Handler{
		NewSignupHandler(sender, cfg, log),
		NewUserVerifiedHandler(log),
		NewUserLoggedInHandler(log),
		NewPasswordResetHandler(sender, cfg, log),
		NewHearingScheduledHandler(sender, log),
		NewCaseUpdatedHandler(sender, log),
		NewDocumentSharedHandler(sender, log),
		NewPaymentCompletedHandler(sender, log),
	}
}
