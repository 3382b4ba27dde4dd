package legacysync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"timeclock.service/internal/core/model"
	"timeclock.service/internal/ports/messaging"
	"timeclock.service/internal/worker"
	"timeclock.service/internal/worker/legacyapi"
	"timeclock.service/pkg/metrics"
)

const queueLabel = "sync"

// StatusStore is the part of the repository the processor needs.
type StatusStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimeClockEvent, error)
	UpdateSyncStatus(ctx context.Context, id uuid.UUID, status model.SyncStatus, retryCount int) error
}

// SyncProcessor handles jobs from the sync queue by forwarding each recorded
// event to the legacy attendance API. A circuit breaker keeps us from
// hammering the legacy system while it is failing.
type SyncProcessor struct {
	store     StatusStore
	legacyapi legacyapi.Client
	cb        *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the sync queue.
func NewProcessor(store StatusStore, client legacyapi.Client) *SyncProcessor {
	settings := gobreaker.Settings{
		Name:        "Legacy-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &SyncProcessor{
		store:     store,
		legacyapi: client,
		cb:        gobreaker.NewCircuitBreaker(settings),
	}
}

// Process forwards one EventRecorded message and tracks sync_status.
func (p *SyncProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty message body")
	}
	var event messaging.EventRecorded
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "malformed").Inc()
		return false, 0, fmt.Errorf("failed to unmarshal event recorded: %w", err)
	}
	id, err := uuid.Parse(event.EventID)
	if err != nil {
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "malformed").Inc()
		return false, 0, fmt.Errorf("invalid event id %q: %w", event.EventID, err)
	}

	log.Ctx(ctx).Debug().Str("event_id", event.EventID).Str("operation", event.Operation).Msg("forwarding event to legacy system")

	record, err := p.store.GetByID(ctx, id)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get record from db: %w", err)
	}

	if record.SyncStatus == model.SyncCompleted && event.Operation == messaging.OperationCreate {
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "skipped").Inc()
		return false, 0, nil
	}

	if err := p.store.UpdateSyncStatus(ctx, id, model.SyncProcessing, record.SyncRetryCount); err != nil {
		return true, 10, fmt.Errorf("failed to mark record processing: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.legacyapi.RecordEvent(ctx, event)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is open; skipping legacy API call")
		}
		newCount := record.SyncRetryCount + 1
		if uerr := p.store.UpdateSyncStatus(ctx, id, model.SyncFailed, newCount); uerr != nil {
			log.Ctx(ctx).Error().Err(uerr).Msg("failed to record sync failure")
		}
		metrics.MessagesProcessed.WithLabelValues(queueLabel, "retry").Inc()
		return true, worker.Backoff(newCount), err
	}

	metrics.MessagesProcessed.WithLabelValues(queueLabel, "completed").Inc()
	err = p.store.UpdateSyncStatus(ctx, id, model.SyncCompleted, 0)
	return false, 0, err
}
