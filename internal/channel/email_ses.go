package channel

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
)

// SESService is the subset of the SES client used here, defined for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESEmailSender delivers email through AWS SES.
type SESEmailSender struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewSESEmailSender(ctx context.Context, cfg *config.Config, log logger.Logger) (*SESEmailSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Integrations.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESEmailSender{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: cfg.Integrations.AWS.SES.FromEmail,
		logger:    log.WithFields(map[string]interface{}{"channel": "email", "provider": "ses"}),
	}, nil
}

// NewSESEmailSenderWithClient injects a client, used in tests.
func NewSESEmailSenderWithClient(client SESService, fromEmail string, log logger.Logger) *SESEmailSender {
	return &SESEmailSender{client: client, fromEmail: fromEmail, logger: log}
}

func (s *SESEmailSender) Send(ctx context.Context, msg EmailMessage) Result {
	if err := ValidateEmailAddress(msg.To); err != nil {
		return failure("%v", err)
	}

	// SES SendEmail has no attachment support; attachments would need the raw
	// MIME API. SMTP is the provider for attachment-bearing mail.
	if len(msg.Attachments) > 0 {
		s.logger.Warn("dropping attachments, unsupported by SES provider", map[string]interface{}{
			"to":          msg.To,
			"attachments": len(msg.Attachments),
		})
	}

	body := &types.Body{}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody)}
	}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody)}
	}

	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body:    body,
		},
		Source: aws.String(s.fromEmail),
	})
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    msg.To,
		})
		return failure("ses send: %v", err)
	}
	return Result{Success: true, Message: fmt.Sprintf("email sent to %s", msg.To)}
}
