package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vocabtrainer/internal/models"
)

// EmailSender is the part of the SES client the email service needs
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

// NewEmailServiceWithClient builds an enabled service around an existing client
func NewEmailServiceWithClient(client EmailSender, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered learner
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to Vocab Trainer"
	textBody := fmt.Sprintf(`Hi %s,

Your Vocab Trainer account is ready. Start a round at %s

---
This is an automated email from Vocab Trainer. Please do not reply.
`, toName, s.appBaseURL)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>Your Vocab Trainer account is ready. <a href="%s">Start a round</a>.</p>
	<p style="font-size: 12px; color: #666;">This is an automated email from Vocab Trainer. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(toName), html.EscapeString(s.appBaseURL))

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPracticeList mails the learner their practice words with definitions
func (s *EmailService) SendPracticeList(ctx context.Context, toEmail, toName string, words []models.StudyWord) error {
	if s.debug {
		log.Printf("[DEBUG] SendPracticeList called: to=%s, words=%d", toEmail, len(words))
	}
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): practice list to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Your practice words (%d)", len(words))
	htmlBody, textBody := renderPracticeList(toName, words)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func renderPracticeList(name string, words []models.StudyWord) (htmlBody, textBody string) {
	var text, rows strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nHere are the words to practice:\n\n", name)
	for _, w := range words {
		fmt.Fprintf(&text, "%s - %s\n", w.Word, w.Definition)
		fmt.Fprintf(&rows, "\t\t<tr><td><strong>%s</strong></td><td>%s</td></tr>\n",
			html.EscapeString(w.Word), html.EscapeString(w.Definition))
	}
	if len(words) == 0 {
		text.WriteString("Nothing to practice right now.\n")
	}

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>Here are the words to practice:</p>
	<table cellpadding="6">
%s	</table>
</body>
</html>
`, html.EscapeString(name), rows.String())
	return htmlBody, text.String()
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
