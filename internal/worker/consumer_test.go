package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu         sync.Mutex
	pending    []types.Message
	deleted    []string
	visibility map[string]int32
}

func (q *fakeQueue) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	msgs := q.pending
	q.pending = nil
	q.mu.Unlock()
	if len(msgs) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (q *fakeQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *fakeQueue) ChangeMessageVisibility(_ context.Context, params *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.visibility[aws.ToString(params.ReceiptHandle)] = params.VisibilityTimeout
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

func (q *fakeQueue) handled() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.deleted) + len(q.visibility)
}

type processorFunc func(ctx context.Context, msg types.Message) (bool, int32, error)

func (f processorFunc) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	return f(ctx, msg)
}

func message(handle, body string) types.Message {
	return types.Message{MessageId: aws.String(handle), ReceiptHandle: aws.String(handle), Body: aws.String(body)}
}

func TestWorker_DeletesOrReleasesMessages(t *testing.T) {
	q := &fakeQueue{
		visibility: map[string]int32{},
		pending: []types.Message{
			message("ok", `{"shopId":1,"userId":2}`),
			message("retry", `{}`),
			message("bad", `{}`),
		},
	}
	proc := processorFunc(func(_ context.Context, msg types.Message) (bool, int32, error) {
		switch aws.ToString(msg.ReceiptHandle) {
		case "retry":
			return true, 40, errors.New("legacy api down")
		case "bad":
			return false, 0, errors.New("malformed")
		}
		return false, 0, nil
	})

	w := NewWorker(q, "queue-url", proc, 2)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return q.handled() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []string{"ok", "bad"}, q.deleted)
	assert.Equal(t, map[string]int32{"retry": 40}, q.visibility)
}

func TestNewWorker_DefaultConcurrency(t *testing.T) {
	w := NewWorker(&fakeQueue{}, "q", processorFunc(nil), 0)
	assert.Equal(t, 10, w.Concurrency)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, int32(20), Backoff(1))
	assert.Equal(t, int32(80), Backoff(3))
	assert.Equal(t, int32(3600), Backoff(12))
}
