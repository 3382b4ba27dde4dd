package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"timeclock.service/pkg/telemetry"
)

// Message attribute values identifying the payload type.
const (
	eventTypeRecorded    = "EVENT_RECORDED"
	eventTypeShiftClosed = "SHIFT_CLOSED"
)

type Producer struct {
	sender        MessageSender
	syncQueueURL  string
	emailQueueURL string
}

func NewProducer(sender MessageSender, syncQueueURL, emailQueueURL string) *Producer {
	return &Producer{
		sender:        sender,
		syncQueueURL:  syncQueueURL,
		emailQueueURL: emailQueueURL,
	}
}

func NewSQSProducer(client SQSClient, syncQueueURL, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, syncQueueURL, emailQueueURL)
}

func (p *Producer) PublishEventRecorded(ctx context.Context, event EventRecorded) error {
	return p.publish(ctx, p.syncQueueURL, eventTypeRecorded, event)
}

func (p *Producer) PublishShiftClosed(ctx context.Context, event ShiftClosed) error {
	return p.publish(ctx, p.emailQueueURL, eventTypeShiftClosed, event)
}

func (p *Producer) publish(ctx context.Context, destination, eventType string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		if e, ok := telemetry.EmployeeFromPayload(b); ok {
			span.SetAttributes(e.Attributes()...)
		}
	}

	if err := p.sender.SendMessage(ctx, destination, eventType, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
