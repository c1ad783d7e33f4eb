package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"

	"github.com/codr1/themeforge/internal/export"
)

type emailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSink mails each artifact as a plain-text message to a fixed recipient.
type SESSink struct {
	client    emailAPI
	sender    string
	recipient string
}

// NewSESSink initializes an SES client using static credentials and region.
func NewSESSink(accessKeyID, secretAccessKey, region, sender, recipient string) (*SESSink, error) {
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, fmt.Errorf("ses credentials and region are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newSESSink(sesv2.NewFromConfig(awsCfg), sender, recipient)
}

func newSESSink(client emailAPI, sender, recipient string) (*SESSink, error) {
	if sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}
	if recipient == "" {
		return nil, fmt.Errorf("ses recipient is required")
	}
	return &SESSink{client: client, sender: sender, recipient: recipient}, nil
}

func (s *SESSink) Deliver(ctx context.Context, artifact export.Artifact) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("ses sink is not initialized")
	}

	subject := fmt.Sprintf("Theme export: %s", artifact.Filename)
	body := fmt.Sprintf("Attached export %s (%s)\n\n%s", artifact.Filename, artifact.MIMEType, artifact.Content)

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
		FromEmailAddress: aws.String(s.sender),
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("recipient", s.recipient).
			Str("filename", artifact.Filename).
			Time("timestamp", time.Now().UTC()).
			Msg("Failed to send SES export")
		return fmt.Errorf("send ses email: %w", err)
	}

	return nil
}
