package channel

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
)

// SNSService is the subset of the SNS client used here, defined for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSMSSender delivers SMS through AWS SNS direct publish.
type SNSSMSSender struct {
	client   SNSService
	senderID string
	logger   logger.Logger
}

func NewSNSSMSSender(ctx context.Context, cfg *config.Config, log logger.Logger) (*SNSSMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Integrations.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SNSSMSSender{
		client:   sns.NewFromConfig(awsCfg),
		senderID: cfg.Integrations.AWS.SNS.DefaultSMSSenderID,
		logger:   log.WithFields(map[string]interface{}{"channel": "sms", "provider": "sns"}),
	}, nil
}

// NewSNSSMSSenderWithClient injects a client, used in tests.
func NewSNSSMSSenderWithClient(client SNSService, senderID string, log logger.Logger) *SNSSMSSender {
	return &SNSSMSSender{client: client, senderID: senderID, logger: log}
}

func (s *SNSSMSSender) Send(ctx context.Context, phoneNumber, message string) Result {
	if err := ValidatePhoneNumber(phoneNumber); err != nil {
		return failure("%v", err)
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}

	_, err := s.client.Publish(ctx, input)
	if err != nil {
		s.logger.Error("SMS send failed", map[string]interface{}{
			"error": err,
			"phone": phoneNumber,
		})
		return failure("sns publish: %v", err)
	}
	return Result{Success: true, Message: fmt.Sprintf("sms sent to %s", phoneNumber)}
}
