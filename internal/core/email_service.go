package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"timeclock.service/internal/ports/messaging"
	"timeclock.service/pkg/telemetry"
)

type EmailService interface {
	SendShiftSummary(ctx context.Context, summary messaging.ShiftClosed) error
}

// SESClient is the subset of the SES API used for summaries.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
	domain string
}

// NewSESEmailService sends summaries from sender to <shop>.<user>@domain.
func NewSESEmailService(client SESClient, sender, domain string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender, domain: domain}
}

// Recipient returns the mailbox the summary for an employee goes to.
func (s *SESEmailService) Recipient(shopID, userID int64) string {
	return fmt.Sprintf("%d.%d@%s", shopID, userID, s.domain)
}

func (s *SESEmailService) SendShiftSummary(ctx context.Context, summary messaging.ShiftClosed) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(telemetry.Employee{ShopID: summary.ShopID, UserID: summary.UserID}.Attributes()...)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{s.Recipient(summary.ShopID, summary.UserID)},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("Work Shift Summary for %s", summary.DateAt)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(summaryText(summary)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

func summaryText(s messaging.ShiftClosed) string {
	return fmt.Sprintf("Hello,\n\nYou have successfully checked out.\n"+
		"Shift: %s - %s\nBreaks: %d minutes\nTotal hours worked: %.2f hours.",
		s.ShiftStartedAt.Format("2006-01-02 15:04"), s.ShiftEndedAt.Format("2006-01-02 15:04"),
		s.BreakMinutes, s.HoursWorked)
}
