package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"timeclock.service/internal/core"
	"timeclock.service/internal/core/model"
	"timeclock.service/internal/ports/messaging"
	"timeclock.service/internal/worker"
	"timeclock.service/pkg/metrics"
)

const queueLabel = "email"

// StatusStore is the part of the repository the processor needs.
type StatusStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error)
	UpdateEmailStatus(ctx context.Context, id uuid.UUID, status model.EmailStatus, retryCount int) error
}

type EmailProcessor struct {
	emailService core.EmailService
	store        StatusStore
}

// NewProcessor sets up a new processor for shift summary emails.
func NewProcessor(emailService core.EmailService, store StatusStore) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		store:        store,
	}
}

// Process sends the summary for one ShiftClosed message, asking the worker
// to retry with backoff when SES or the database fails.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty message body")
	}
	var event messaging.ShiftClosed
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "malformed").Inc()
		return false, 0, fmt.Errorf("failed to unmarshal shift closed event: %w", err)
	}
	id, err := uuid.Parse(event.EventID)
	if err != nil {
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "malformed").Inc()
		return false, 0, fmt.Errorf("invalid event id %q: %w", event.EventID, err)
	}

	record, err := p.store.GetByID(ctx, id)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get record from db for email processing: %w", err)
	}

	if record.EmailStatus == model.EmailCompleted || record.EmailStatus == model.EmailSkipped {
		log.Ctx(ctx).Info().Str("event_id", event.EventID).Str("status", string(record.EmailStatus)).Msg("Email not needed. Skipping.")
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "skipped").Inc()
		return false, 0, nil
	}

	if err := p.emailService.SendShiftSummary(ctx, event); err != nil {
		newCount := record.EmailRetryCount + 1
		if uerr := p.store.UpdateEmailStatus(ctx, id, model.EmailFailed, newCount); uerr != nil {
			log.Ctx(ctx).Error().Err(uerr).Msg("failed to record email failure")
		}
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "retry").Inc()
		return true, worker.Backoff(newCount), err
	}

	metrics.MessagesProcessed.WithLabelValues(queueLabel, "completed").Inc()
	err = p.store.UpdateEmailStatus(ctx, id, model.EmailCompleted, 0)
	return false, 0, err
}
