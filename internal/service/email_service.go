package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"lobohub/internal/models"
)

// EmailService sends invite codes via Amazon SES. When no sender address is
// configured the service runs disabled and every send is a logged no-op, so
// a device without SES credentials still works.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
	enabled   bool
	log       *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, baseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	logger.Info("email service enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion))

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
		enabled:   true,
		log:       logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInviteEmail sends the family's invite code to a prospective member
func (s *EmailService) SendInviteEmail(ctx context.Context, toEmail, toName string, family *models.Family) error {
	if !s.enabled {
		s.log.Info("skipping invite email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	subject := fmt.Sprintf("You're invited to join %s on LoboHub", family.Name)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYou've been invited to join the family \"%s\" on LoboHub.\n\n"+
			"Open LoboHub, choose \"Join a family\", and enter this code:\n\n    %s\n\n"+
			"The code isn't case sensitive.\n\n"+
			"Don't have LoboHub yet? Get it at %s\n",
		toName, family.Name, family.InviteCode, s.baseURL,
	)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>You've been invited to join the family <strong>%s</strong> on LoboHub.</p>
	<p>Open LoboHub, choose <em>Join a family</em>, and enter this code:</p>
	<p style="font-size: 28px; letter-spacing: 4px; font-weight: bold;">%s</p>
	<p>The code isn't case sensitive.</p>
	<p>Don't have LoboHub yet? Get it at <a href="%s">%s</a>.</p>
</body>
</html>`, toName, family.Name, family.InviteCode, s.baseURL, s.baseURL)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(textBody)},
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}

	s.log.Info("invite email sent",
		zap.String("to", toEmail),
		zap.String("family_id", family.ID))

	return nil
}
