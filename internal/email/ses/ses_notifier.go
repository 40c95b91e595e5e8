// Package ses delivers review notifications through AWS SESv2.
package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"payfill/internal/domain"
	"payfill/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	reviewerTo  string
}

// NewSESNotifier creates an SES-backed ReviewNotifier.
func NewSESNotifier(region, fromAddress, fromName, reviewerTo string) (port.ReviewNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		reviewerTo:  reviewerTo,
	}, nil
}

func (s *sesNotifier) NotifyReviewRequired(ctx context.Context, record *domain.DocumentRecord) error {
	if s.reviewerTo == "" {
		return nil
	}
	if record.Formatted == nil || len(record.Formatted.ReviewRequired) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Document %s needs review (%d field(s))", record.FileName, len(record.Formatted.ReviewRequired))
	htmlBody := buildReviewHTML(record)
	textBody := buildReviewText(record)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.reviewerTo},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewText(record *domain.DocumentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document %s (%s) has fields below the confidence threshold:\n\n", record.FileName, record.ID)
	for _, item := range record.Formatted.ReviewRequired {
		fmt.Fprintf(&b, "- %s = %v (confidence %.2f): %s\n", item.Field, item.Value, item.Confidence, item.Reasoning)
	}
	b.WriteString("\nPlease verify these values before filling the payment form.\n\nPayfill")
	return b.String()
}

func buildReviewHTML(record *domain.DocumentRecord) string {
	var rows strings.Builder
	for _, item := range record.Formatted.ReviewRequired {
		fmt.Fprintf(&rows, `<tr><td style="padding:6px 12px;">%s</td><td style="padding:6px 12px;">%v</td><td style="padding:6px 12px;">%.2f</td><td style="padding:6px 12px;">%s</td></tr>`,
			item.Field, item.Value, item.Confidence, item.Reasoning)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document needs review</h2>
  <p>Document <strong>%s</strong> (%s) has fields below the confidence threshold:</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr style="background: #f5f5f5;"><th style="padding:6px 12px; text-align:left;">Field</th><th style="padding:6px 12px; text-align:left;">Value</th><th style="padding:6px 12px; text-align:left;">Confidence</th><th style="padding:6px 12px; text-align:left;">Reasoning</th></tr>
    %s
  </table>
  <p>Please verify these values before filling the payment form.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Payfill - Payment Form Autofill</p>
</body>
</html>`, record.FileName, record.ID, rows.String())
}
